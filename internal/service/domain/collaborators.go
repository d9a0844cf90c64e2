package domain

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service"
)

// Mailer delivers a plain text message. Implementations may queue.
type Mailer interface {
	Send(recipient, subject, body string) error
}

// TokenMinter issues signed access credentials.
type TokenMinter interface {
	Mint(user *model.User) (string, error)
}

// ConfirmationCodes derives and verifies codes from a user's secret state.
type ConfirmationCodes interface {
	Make(user *model.User) string
	Check(user *model.User, code string) bool
}

// RatingCache holds computed title ratings. A nil rating with ok=true is a
// cached "no reviews yet". GetTitleRating returns the invalidation
// generation it saw; SetTitleRating drops the value if the title was
// invalidated after that generation.
type RatingCache interface {
	GetTitleRating(titleID uint) (rating *float64, ok bool, gen int64, err error)
	SetTitleRating(titleID uint, rating *float64, gen int64) error
	InvalidateTitleRating(titleID uint) error
}

func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return service.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return service.ErrConflict
	}
	return err
}

// optional turns a not-found lookup into (nil, nil).
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return v, err
}

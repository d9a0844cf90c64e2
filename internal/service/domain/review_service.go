package domain

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/validation"
)

type ReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score *int   `json:"score" validate:"required,min=1,max=10"`
}

type ReviewPatch struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

type ReviewService interface {
	ListReviews(titleID uint) ([]model.Review, error)
	GetReview(titleID, id uint) (*model.Review, error)
	CreateReview(actor *model.User, titleID uint, input ReviewInput) (*model.Review, error)
	UpdateReview(actor *model.User, titleID, id uint, patch ReviewPatch) (*model.Review, error)
	DeleteReview(actor *model.User, titleID, id uint) error
}

type reviewService struct {
	repo      repository.ReviewRepo
	titleRepo repository.TitleRepo
	cache     RatingCache
	logger    *zap.Logger
}

var _ ReviewService = (*reviewService)(nil)

func NewReviewService(reviewRepo repository.ReviewRepo, titleRepo repository.TitleRepo,
	cache RatingCache, logger *zap.Logger) *reviewService {
	return &reviewService{
		repo:      reviewRepo,
		titleRepo: titleRepo,
		cache:     cache,
		logger:    logger,
	}
}

var ErrDuplicateReview = fmt.Errorf("a review of this title by this author already exists: %w", service.ErrConflict)

func (s *reviewService) ListReviews(titleID uint) ([]model.Review, error) {
	if err := s.titleExists(titleID); err != nil {
		return nil, err
	}
	return s.repo.ListByTitle(titleID)
}

func (s *reviewService) GetReview(titleID, id uint) (*model.Review, error) {
	review, err := s.repo.GetByID(titleID, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return review, nil
}

// CreateReview enforces one review per (author, title). The lookup here
// gives the caller a structured error; the unique index on
// (title_id, author_id) settles concurrent creates.
func (s *reviewService) CreateReview(actor *model.User, titleID uint, input ReviewInput) (*model.Review, error) {
	if err := access.CheckCollection(access.AuthorOrModerator, actor, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	if err := s.titleExists(titleID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByTitleAndAuthor(titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &model.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     input.Text,
		Score:    *input.Score,
	}
	if err := s.repo.Create(review); err != nil {
		if errors.Is(translateErr(err), service.ErrConflict) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}
	review.Author = *actor

	dropRating(s.cache, s.logger, titleID)
	return review, nil
}

func (s *reviewService) UpdateReview(actor *model.User, titleID, id uint, patch ReviewPatch) (*model.Review, error) {
	review, err := access.Authorize(access.AuthorOrModerator, actor, access.ActionUpdate, s.load(titleID, id))
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&patch); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		review.Score = *patch.Score
	}
	if err := s.repo.Update(review); err != nil {
		return nil, translateErr(err)
	}

	if patch.Score != nil {
		dropRating(s.cache, s.logger, titleID)
	}
	return review, nil
}

func (s *reviewService) DeleteReview(actor *model.User, titleID, id uint) error {
	review, err := access.Authorize(access.AuthorOrModerator, actor, access.ActionDelete, s.load(titleID, id))
	if err != nil {
		return err
	}
	if err := s.repo.Delete(review.ID); err != nil {
		return err
	}
	dropRating(s.cache, s.logger, titleID)
	return nil
}

func (s *reviewService) load(titleID, id uint) func() (*model.Review, error) {
	return func() (*model.Review, error) {
		return s.GetReview(titleID, id)
	}
}

func (s *reviewService) titleExists(titleID uint) error {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return translateErr(err)
	}
	return nil
}

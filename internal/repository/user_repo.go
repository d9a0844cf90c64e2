package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	List(search string) ([]model.User, error)
	Update(user *model.User) error
	UpdateLastLogin(id uint, at time.Time) error
	Delete(id uint) error
}

type userRepoGorm struct {
	db *gorm.DB
}

var _ UserRepo = (*userRepoGorm)(nil)

func NewUserRepoGorm(db *gorm.DB) *userRepoGorm {
	return &userRepoGorm{
		db: db,
	}
}

func (r *userRepoGorm) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoGorm{
		db: tx,
	}
}

func (r *userRepoGorm) Create(user *model.User) error {
	ctx := context.Background()
	return gorm.G[model.User](r.db).Create(ctx, user)
}

func (r *userRepoGorm) GetByID(id uint) (*model.User, error) {
	ctx := context.Background()
	user, err := gorm.G[model.User](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) GetByUsername(username string) (*model.User, error) {
	ctx := context.Background()
	user, err := gorm.G[model.User](r.db).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) GetByEmail(email string) (*model.User, error) {
	ctx := context.Background()
	user, err := gorm.G[model.User](r.db).Where("email = ?", email).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) List(search string) ([]model.User, error) {
	ctx := context.Background()
	q := gorm.G[model.User](r.db).Order("id")
	if search != "" {
		q = q.Where("username ILIKE ?", "%"+search+"%")
	}
	return q.Find(ctx)
}

func (r *userRepoGorm) Update(user *model.User) error {
	return r.db.WithContext(context.Background()).Save(user).Error
}

func (r *userRepoGorm) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.WithContext(context.Background()).
		Model(&model.User{}).Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *userRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.User](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

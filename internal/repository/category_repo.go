package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

type CategoryRepo interface {
	WithTx(tx *gorm.DB) CategoryRepo
	Create(category *model.Category) error
	GetBySlug(slug string) (*model.Category, error)
	List(search string) ([]model.Category, error)
	Delete(id uint) error
}

type categoryRepoGorm struct {
	db *gorm.DB
}

var _ CategoryRepo = (*categoryRepoGorm)(nil)

func NewCategoryRepoGorm(db *gorm.DB) *categoryRepoGorm {
	return &categoryRepoGorm{
		db: db,
	}
}

func (r *categoryRepoGorm) WithTx(tx *gorm.DB) CategoryRepo {
	return &categoryRepoGorm{
		db: tx,
	}
}

func (r *categoryRepoGorm) Create(category *model.Category) error {
	ctx := context.Background()
	return gorm.G[model.Category](r.db).Create(ctx, category)
}

func (r *categoryRepoGorm) GetBySlug(slug string) (*model.Category, error) {
	ctx := context.Background()
	category, err := gorm.G[model.Category](r.db).Where("slug = ?", slug).First(ctx)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepoGorm) List(search string) ([]model.Category, error) {
	ctx := context.Background()
	q := gorm.G[model.Category](r.db).Order("name")
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	return q.Find(ctx)
}

func (r *categoryRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.Category](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

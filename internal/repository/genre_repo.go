package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

type GenreRepo interface {
	WithTx(tx *gorm.DB) GenreRepo
	Create(genre *model.Genre) error
	GetBySlug(slug string) (*model.Genre, error)
	GetBySlugs(slugs []string) ([]model.Genre, error)
	List(search string) ([]model.Genre, error)
	Delete(id uint) error
}

type genreRepoGorm struct {
	db *gorm.DB
}

var _ GenreRepo = (*genreRepoGorm)(nil)

func NewGenreRepoGorm(db *gorm.DB) *genreRepoGorm {
	return &genreRepoGorm{
		db: db,
	}
}

func (r *genreRepoGorm) WithTx(tx *gorm.DB) GenreRepo {
	return &genreRepoGorm{
		db: tx,
	}
}

func (r *genreRepoGorm) Create(genre *model.Genre) error {
	ctx := context.Background()
	return gorm.G[model.Genre](r.db).Create(ctx, genre)
}

func (r *genreRepoGorm) GetBySlug(slug string) (*model.Genre, error) {
	ctx := context.Background()
	genre, err := gorm.G[model.Genre](r.db).Where("slug = ?", slug).First(ctx)
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepoGorm) GetBySlugs(slugs []string) ([]model.Genre, error) {
	ctx := context.Background()
	if len(slugs) == 0 {
		return nil, nil
	}
	return gorm.G[model.Genre](r.db).Where("slug IN ?", slugs).Find(ctx)
}

func (r *genreRepoGorm) List(search string) ([]model.Genre, error) {
	ctx := context.Background()
	q := gorm.G[model.Genre](r.db).Order("name")
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	return q.Find(ctx)
}

func (r *genreRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.Genre](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

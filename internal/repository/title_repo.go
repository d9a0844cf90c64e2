package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

// TitleFilter narrows ListTitles; zero fields are ignored.
type TitleFilter struct {
	Name     string
	Genre    string
	Category string
	Year     int
}

type TitleRepo interface {
	WithTx(tx *gorm.DB) TitleRepo
	Create(title *model.Title) error
	GetByID(id uint) (*model.Title, error)
	List(filter TitleFilter) ([]model.Title, error)
	Update(title *model.Title, genres []model.Genre) error
	Delete(id uint) error
	Ratings(ids []uint) (map[uint]float64, error)
}

type titleRepoGorm struct {
	db *gorm.DB
}

var _ TitleRepo = (*titleRepoGorm)(nil)

func NewTitleRepoGorm(db *gorm.DB) *titleRepoGorm {
	return &titleRepoGorm{
		db: db,
	}
}

func (r *titleRepoGorm) WithTx(tx *gorm.DB) TitleRepo {
	return &titleRepoGorm{
		db: tx,
	}
}

func (r *titleRepoGorm) Create(title *model.Title) error {
	ctx := context.Background()
	return r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(title).Error
}

func (r *titleRepoGorm) GetByID(id uint) (*model.Title, error) {
	ctx := context.Background()
	var title model.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		Where("id = ?", id).
		First(&title).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepoGorm) List(filter TitleFilter) ([]model.Title, error) {
	ctx := context.Background()
	q := r.db.WithContext(ctx).Model(&model.Title{}).
		Preload("Category").
		Preload("Genres")

	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			r.db.Model(&model.Category{}).Select("id").Where("slug = ?", filter.Category))
	}
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)",
			r.db.Table("title_genres").
				Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", filter.Genre))
	}

	var titles []model.Title
	if err := q.Order("titles.year DESC").Order("titles.name").Find(&titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// Update saves scalar fields and, when genres is non-nil, replaces the
// genre set.
func (r *titleRepoGorm) Update(title *model.Title, genres []model.Genre) error {
	ctx := context.Background()
	db := r.db.WithContext(ctx)
	if err := db.Model(title).Select("name", "year", "description", "category_id").Updates(title).Error; err != nil {
		return err
	}
	if genres == nil {
		return nil
	}
	if err := db.Model(title).Association("Genres").Replace(genres); err != nil {
		return err
	}
	title.Genres = genres
	return nil
}

func (r *titleRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.Title](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

type titleRating struct {
	TitleID uint
	Rating  float64
}

// Ratings returns the mean review score per title; titles without
// reviews are absent from the map.
func (r *titleRepoGorm) Ratings(ids []uint) (map[uint]float64, error) {
	ctx := context.Background()
	ratings := make(map[uint]float64, len(ids))
	if len(ids) == 0 {
		return ratings, nil
	}

	var rows []titleRating
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("title_id, AVG(score)::float8 AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.TitleID] = row.Rating
	}
	return ratings, nil
}

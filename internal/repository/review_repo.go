package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

type ReviewRepo interface {
	WithTx(tx *gorm.DB) ReviewRepo
	Create(review *model.Review) error
	GetByID(titleID, id uint) (*model.Review, error)
	ListByTitle(titleID uint) ([]model.Review, error)
	ExistsByTitleAndAuthor(titleID, authorID uint) (bool, error)
	TitleIDsByAuthor(authorID uint) ([]uint, error)
	Update(review *model.Review) error
	Delete(id uint) error
}

type reviewRepoGorm struct {
	db *gorm.DB
}

var _ ReviewRepo = (*reviewRepoGorm)(nil)

func NewReviewRepoGorm(db *gorm.DB) *reviewRepoGorm {
	return &reviewRepoGorm{
		db: db,
	}
}

func (r *reviewRepoGorm) WithTx(tx *gorm.DB) ReviewRepo {
	return &reviewRepoGorm{
		db: tx,
	}
}

func (r *reviewRepoGorm) Create(review *model.Review) error {
	ctx := context.Background()
	return r.db.WithContext(ctx).Omit("Title", "Author").Create(review).Error
}

func (r *reviewRepoGorm) GetByID(titleID, id uint) (*model.Review, error) {
	ctx := context.Background()
	var review model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", id, titleID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepoGorm) ListByTitle(titleID uint) ([]model.Review, error) {
	ctx := context.Background()
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ?", titleID).
		Order("pub_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepoGorm) ExistsByTitleAndAuthor(titleID, authorID uint) (bool, error) {
	ctx := context.Background()
	count, err := gorm.G[model.Review](r.db).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TitleIDsByAuthor lists the titles authorID has reviewed.
func (r *reviewRepoGorm) TitleIDsByAuthor(authorID uint) ([]uint, error) {
	ctx := context.Background()
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("author_id = ?", authorID).
		Distinct().
		Pluck("title_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *reviewRepoGorm) Update(review *model.Review) error {
	ctx := context.Background()
	return r.db.WithContext(ctx).Model(review).Select("text", "score").Updates(review).Error
}

func (r *reviewRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.Review](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
)

type CommentRepo interface {
	WithTx(tx *gorm.DB) CommentRepo
	Create(comment *model.Comment) error
	GetByID(reviewID, id uint) (*model.Comment, error)
	ListByReview(reviewID uint) ([]model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id uint) error
}

type commentRepoGorm struct {
	db *gorm.DB
}

var _ CommentRepo = (*commentRepoGorm)(nil)

func NewCommentRepoGorm(db *gorm.DB) *commentRepoGorm {
	return &commentRepoGorm{
		db: db,
	}
}

func (r *commentRepoGorm) WithTx(tx *gorm.DB) CommentRepo {
	return &commentRepoGorm{
		db: tx,
	}
}

func (r *commentRepoGorm) Create(comment *model.Comment) error {
	ctx := context.Background()
	return r.db.WithContext(ctx).Omit("Review", "Author").Create(comment).Error
}

func (r *commentRepoGorm) GetByID(reviewID, id uint) (*model.Comment, error) {
	ctx := context.Background()
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", id, reviewID).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepoGorm) ListByReview(reviewID uint) ([]model.Comment, error) {
	ctx := context.Background()
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("review_id = ?", reviewID).
		Order("pub_date DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepoGorm) Update(comment *model.Comment) error {
	ctx := context.Background()
	return r.db.WithContext(ctx).Model(comment).Select("text").Updates(comment).Error
}

func (r *commentRepoGorm) Delete(id uint) error {
	ctx := context.Background()
	_, err := gorm.G[model.Comment](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

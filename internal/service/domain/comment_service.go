package domain

import (
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/validation"
)

type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

type CommentPatch struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}

type CommentService interface {
	ListComments(titleID, reviewID uint) ([]model.Comment, error)
	GetComment(titleID, reviewID, id uint) (*model.Comment, error)
	CreateComment(actor *model.User, titleID, reviewID uint, input CommentInput) (*model.Comment, error)
	UpdateComment(actor *model.User, titleID, reviewID, id uint, patch CommentPatch) (*model.Comment, error)
	DeleteComment(actor *model.User, titleID, reviewID, id uint) error
}

type commentService struct {
	repo       repository.CommentRepo
	reviewRepo repository.ReviewRepo
	logger     *zap.Logger
}

var _ CommentService = (*commentService)(nil)

func NewCommentService(commentRepo repository.CommentRepo, reviewRepo repository.ReviewRepo, logger *zap.Logger) *commentService {
	return &commentService{
		repo:       commentRepo,
		reviewRepo: reviewRepo,
		logger:     logger,
	}
}

func (s *commentService) ListComments(titleID, reviewID uint) ([]model.Comment, error) {
	if err := s.reviewExists(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.repo.ListByReview(reviewID)
}

func (s *commentService) GetComment(titleID, reviewID, id uint) (*model.Comment, error) {
	if err := s.reviewExists(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.repo.GetByID(reviewID, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return comment, nil
}

func (s *commentService) CreateComment(actor *model.User, titleID, reviewID uint, input CommentInput) (*model.Comment, error) {
	if err := access.CheckCollection(access.AuthorOrModerator, actor, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	if err := s.reviewExists(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     input.Text,
	}
	if err := s.repo.Create(comment); err != nil {
		return nil, translateErr(err)
	}
	comment.Author = *actor
	return comment, nil
}

func (s *commentService) UpdateComment(actor *model.User, titleID, reviewID, id uint, patch CommentPatch) (*model.Comment, error) {
	comment, err := access.Authorize(access.AuthorOrModerator, actor, access.ActionUpdate, s.load(titleID, reviewID, id))
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&patch); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		comment.Text = *patch.Text
	}
	if err := s.repo.Update(comment); err != nil {
		return nil, translateErr(err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(actor *model.User, titleID, reviewID, id uint) error {
	comment, err := access.Authorize(access.AuthorOrModerator, actor, access.ActionDelete, s.load(titleID, reviewID, id))
	if err != nil {
		return err
	}
	return s.repo.Delete(comment.ID)
}

func (s *commentService) load(titleID, reviewID, id uint) func() (*model.Comment, error) {
	return func() (*model.Comment, error) {
		return s.GetComment(titleID, reviewID, id)
	}
}

func (s *commentService) reviewExists(titleID, reviewID uint) error {
	if _, err := s.reviewRepo.GetByID(titleID, reviewID); err != nil {
		return translateErr(err)
	}
	return nil
}

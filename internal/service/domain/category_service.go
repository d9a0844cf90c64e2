package domain

import (
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/validation"
)

// ReferenceInput creates a category or a genre.
type ReferenceInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type CategoryService interface {
	ListCategories(search string) ([]model.Category, error)
	CreateCategory(actor *model.User, input ReferenceInput) (*model.Category, error)
	DeleteCategory(actor *model.User, slug string) error
}

type categoryService struct {
	repo   repository.CategoryRepo
	logger *zap.Logger
}

var _ CategoryService = (*categoryService)(nil)

func NewCategoryService(categoryRepo repository.CategoryRepo, logger *zap.Logger) *categoryService {
	return &categoryService{
		repo:   categoryRepo,
		logger: logger,
	}
}

func (s *categoryService) ListCategories(search string) ([]model.Category, error) {
	return s.repo.List(search)
}

func (s *categoryService) CreateCategory(actor *model.User, input ReferenceInput) (*model.Category, error) {
	if err := access.CheckCollection(access.ReadOnlyOrAdmin, actor, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}

	existing, err := optional(s.repo.GetBySlug(input.Slug))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, service.ErrConflict
	}

	category := &model.Category{Name: input.Name, Slug: input.Slug}
	if err := s.repo.Create(category); err != nil {
		return nil, translateErr(err)
	}
	s.logger.Info("category created", zap.String("slug", category.Slug), zap.Uint("by", actor.ID))
	return category, nil
}

func (s *categoryService) DeleteCategory(actor *model.User, slug string) error {
	category, err := access.Authorize(access.ReadOnlyOrAdmin, actor, access.ActionDelete, func() (*model.Category, error) {
		category, err := s.repo.GetBySlug(slug)
		return category, translateErr(err)
	})
	if err != nil {
		return err
	}
	return s.repo.Delete(category.ID)
}

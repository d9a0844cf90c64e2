package domain

import (
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/validation"
)

type GenreService interface {
	ListGenres(search string) ([]model.Genre, error)
	CreateGenre(actor *model.User, input ReferenceInput) (*model.Genre, error)
	DeleteGenre(actor *model.User, slug string) error
}

type genreService struct {
	repo   repository.GenreRepo
	logger *zap.Logger
}

var _ GenreService = (*genreService)(nil)

func NewGenreService(genreRepo repository.GenreRepo, logger *zap.Logger) *genreService {
	return &genreService{
		repo:   genreRepo,
		logger: logger,
	}
}

func (s *genreService) ListGenres(search string) ([]model.Genre, error) {
	return s.repo.List(search)
}

func (s *genreService) CreateGenre(actor *model.User, input ReferenceInput) (*model.Genre, error) {
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

	genre := &model.Genre{Name: input.Name, Slug: input.Slug}
	if err := s.repo.Create(genre); err != nil {
		return nil, translateErr(err)
	}
	s.logger.Info("genre created", zap.String("slug", genre.Slug), zap.Uint("by", actor.ID))
	return genre, nil
}

func (s *genreService) DeleteGenre(actor *model.User, slug string) error {
	genre, err := access.Authorize(access.ReadOnlyOrAdmin, actor, access.ActionDelete, func() (*model.Genre, error) {
		genre, err := s.repo.GetBySlug(slug)
		return genre, translateErr(err)
	})
	if err != nil {
		return err
	}
	return s.repo.Delete(genre.ID)
}

package domain

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/validation"
)

type TitleInput struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        *int     `json:"year" validate:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,slug"`
	Category    string   `json:"category" validate:"required,slug"`
}

type TitlePatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" validate:"omitempty,min=1,dive,slug"`
	Category    *string  `json:"category" validate:"omitempty,slug"`
}

// RatedTitle is a title with its mean review score; Rating is nil when
// the title has no reviews.
type RatedTitle struct {
	*model.Title
	Rating *float64
}

type TitleService interface {
	ListTitles(filter repository.TitleFilter) ([]RatedTitle, error)
	GetTitle(id uint) (*RatedTitle, error)
	CreateTitle(actor *model.User, input TitleInput) (*RatedTitle, error)
	UpdateTitle(actor *model.User, id uint, patch TitlePatch) (*RatedTitle, error)
	DeleteTitle(actor *model.User, id uint) error
}

type titleService struct {
	repo         repository.TitleRepo
	categoryRepo repository.CategoryRepo
	genreRepo    repository.GenreRepo
	cache        RatingCache
	logger       *zap.Logger
	now          func() time.Time
}

var _ TitleService = (*titleService)(nil)

func NewTitleService(titleRepo repository.TitleRepo, categoryRepo repository.CategoryRepo,
	genreRepo repository.GenreRepo, cache RatingCache, logger *zap.Logger) *titleService {
	return &titleService{
		repo:         titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *titleService) ListTitles(filter repository.TitleFilter) ([]RatedTitle, error) {
	titles, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}
	ratings, err := s.repo.Ratings(ids)
	if err != nil {
		return nil, err
	}

	result := make([]RatedTitle, len(titles))
	for i := range titles {
		result[i] = RatedTitle{Title: &titles[i]}
		if rating, ok := ratings[titles[i].ID]; ok {
			result[i].Rating = &rating
		}
	}
	return result, nil
}

func (s *titleService) GetTitle(id uint) (*RatedTitle, error) {
	title, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translateErr(err)
	}
	rating, err := s.rating(id)
	if err != nil {
		return nil, err
	}
	return &RatedTitle{Title: title, Rating: rating}, nil
}

func (s *titleService) CreateTitle(actor *model.User, input TitleInput) (*RatedTitle, error) {
	if err := access.CheckCollection(access.ReadOnlyOrAdmin, actor, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	if err := s.checkYear(*input.Year); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(input.Genre)
	if err != nil {
		return nil, err
	}

	title := &model.Title{
		Name:        input.Name,
		Year:        *input.Year,
		Description: input.Description,
		CategoryID:  category.ID,
		Genres:      genres,
	}
	if err := s.repo.Create(title); err != nil {
		return nil, translateErr(err)
	}
	title.Category = *category
	return &RatedTitle{Title: title}, nil
}

func (s *titleService) UpdateTitle(actor *model.User, id uint, patch TitlePatch) (*RatedTitle, error) {
	title, err := access.Authorize(access.ReadOnlyOrAdmin, actor, access.ActionUpdate, s.load(id))
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&patch); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		if err := s.checkYear(*patch.Year); err != nil {
			return nil, err
		}
		title.Year = *patch.Year
	}
	if patch.Description != nil {
		title.Description = *patch.Description
	}
	if patch.Category != nil {
		category, err := s.resolveCategory(*patch.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = category.ID
		title.Category = *category
	}
	var genres []model.Genre
	if patch.Genre != nil {
		if genres, err = s.resolveGenres(patch.Genre); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(title, genres); err != nil {
		return nil, translateErr(err)
	}
	rating, err := s.rating(title.ID)
	if err != nil {
		return nil, err
	}
	return &RatedTitle{Title: title, Rating: rating}, nil
}

func (s *titleService) DeleteTitle(actor *model.User, id uint) error {
	title, err := access.Authorize(access.ReadOnlyOrAdmin, actor, access.ActionDelete, s.load(id))
	if err != nil {
		return err
	}
	if err := s.repo.Delete(title.ID); err != nil {
		return err
	}
	dropRating(s.cache, s.logger, title.ID)
	return nil
}

func (s *titleService) load(id uint) func() (*model.Title, error) {
	return func() (*model.Title, error) {
		title, err := s.repo.GetByID(id)
		if err != nil {
			return nil, translateErr(err)
		}
		return title, nil
	}
}

func (s *titleService) checkYear(year int) error {
	if current := s.now().Year(); year > current {
		return service.NewValidationError("year", fmt.Sprintf("Year cannot be later than %d.", current))
	}
	return nil
}

func (s *titleService) resolveCategory(slug string) (*model.Category, error) {
	category, err := optional(s.categoryRepo.GetBySlug(slug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, service.NewValidationError("category", fmt.Sprintf("Category with slug %q does not exist.", slug))
	}
	return category, nil
}

func (s *titleService) resolveGenres(slugs []string) ([]model.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(slugs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	verr := &service.ValidationError{}
	for _, slug := range slugs {
		if !found[slug] {
			verr.Add("genre", fmt.Sprintf("Genre with slug %q does not exist.", slug))
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	return genres, nil
}

// rating reads through the cache. Cache failures are logged and the
// store answers instead.
func (s *titleService) rating(titleID uint) (*float64, error) {
	cacheable := false
	var gen int64
	if s.cache != nil {
		rating, ok, observed, err := s.cache.GetTitleRating(titleID)
		switch {
		case err != nil:
			s.logger.Warn("rating cache read failed", zap.Uint("title_id", titleID), zap.Error(err))
		case ok:
			return rating, nil
		default:
			cacheable, gen = true, observed
		}
	}

	ratings, err := s.repo.Ratings([]uint{titleID})
	if err != nil {
		return nil, err
	}
	var rating *float64
	if r, ok := ratings[titleID]; ok {
		rating = &r
	}

	if cacheable {
		if err := s.cache.SetTitleRating(titleID, rating, gen); err != nil {
			s.logger.Warn("rating cache write failed", zap.Uint("title_id", titleID), zap.Error(err))
		}
	}
	return rating, nil
}

// dropRating evicts a cached rating after its reviews changed.
func dropRating(cache RatingCache, logger *zap.Logger, titleID uint) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateTitleRating(titleID); err != nil {
		logger.Warn("rating cache invalidation failed", zap.Uint("title_id", titleID), zap.Error(err))
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

// ReferenceHandler serves categories and genres, which share one shape.
type ReferenceHandler struct {
	app *app.App
}

func NewReferenceHandler(app *app.App) *ReferenceHandler {
	return &ReferenceHandler{
		app: app,
	}
}

func (h *ReferenceHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.app.CategoryService.ListCategories(ctx.Query("search"))
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	resp := make([]ReferenceResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, ReferenceResponse{Name: c.Name, Slug: c.Slug})
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler) HandleCreateCategory(ctx *gin.Context) {
	var req domain.ReferenceInput
	if !bindJSON(ctx, &req) {
		return
	}
	category, err := h.app.CategoryService.CreateCategory(actorFrom(ctx), req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, ReferenceResponse{Name: category.Name, Slug: category.Slug})
}

func (h *ReferenceHandler) HandleDeleteCategory(ctx *gin.Context) {
	if err := h.app.CategoryService.DeleteCategory(actorFrom(ctx), ctx.Param("slug")); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *ReferenceHandler) HandleListGenres(ctx *gin.Context) {
	genres, err := h.app.GenreService.ListGenres(ctx.Query("search"))
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, genreResponses(genres))
}

func (h *ReferenceHandler) HandleCreateGenre(ctx *gin.Context) {
	var req domain.ReferenceInput
	if !bindJSON(ctx, &req) {
		return
	}
	genre, err := h.app.GenreService.CreateGenre(actorFrom(ctx), req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, ReferenceResponse{Name: genre.Name, Slug: genre.Slug})
}

func (h *ReferenceHandler) HandleDeleteGenre(ctx *gin.Context) {
	if err := h.app.GenreService.DeleteGenre(actorFrom(ctx), ctx.Param("slug")); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func genreResponses(genres []model.Genre) []ReferenceResponse {
	resp := make([]ReferenceResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, ReferenceResponse{Name: g.Name, Slug: g.Slug})
	}
	return resp
}

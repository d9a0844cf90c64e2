package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/service"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

type TitleHandler struct {
	app *app.App
}

func NewTitleHandler(app *app.App) *TitleHandler {
	return &TitleHandler{
		app: app,
	}
}

// HandleListTitles filters by name (contains), genre slug, category slug
// and exact year.
func (h *TitleHandler) HandleListTitles(ctx *gin.Context) {
	filter := repository.TitleFilter{
		Name:     ctx.Query("name"),
		Genre:    ctx.Query("genre"),
		Category: ctx.Query("category"),
	}
	if raw := ctx.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(ctx, h.app.Logger, service.NewValidationError("year", "A valid integer is required."))
			return
		}
		filter.Year = year
	}

	titles, err := h.app.TitleService.ListTitles(filter)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	resp := make([]TitleResponse, 0, len(titles))
	for i := range titles {
		resp = append(resp, newTitleResponse(&titles[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) HandleGetTitle(ctx *gin.Context) {
	id, ok := pathID(ctx, "title_id")
	if !ok {
		return
	}
	title, err := h.app.TitleService.GetTitle(id)
	h.respondTitle(ctx, http.StatusOK, title, err)
}

func (h *TitleHandler) HandleCreateTitle(ctx *gin.Context) {
	var req domain.TitleInput
	if !bindJSON(ctx, &req) {
		return
	}
	title, err := h.app.TitleService.CreateTitle(actorFrom(ctx), req)
	h.respondTitle(ctx, http.StatusCreated, title, err)
}

func (h *TitleHandler) HandleUpdateTitle(ctx *gin.Context) {
	id, ok := pathID(ctx, "title_id")
	if !ok {
		return
	}
	var req domain.TitlePatch
	if !bindJSON(ctx, &req) {
		return
	}
	title, err := h.app.TitleService.UpdateTitle(actorFrom(ctx), id, req)
	h.respondTitle(ctx, http.StatusOK, title, err)
}

func (h *TitleHandler) HandleDeleteTitle(ctx *gin.Context) {
	id, ok := pathID(ctx, "title_id")
	if !ok {
		return
	}
	if err := h.app.TitleService.DeleteTitle(actorFrom(ctx), id); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *TitleHandler) respondTitle(ctx *gin.Context, status int, title *domain.RatedTitle, err error) {
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(status, newTitleResponse(title))
}

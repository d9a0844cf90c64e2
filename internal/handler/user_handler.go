package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

type UserHandler struct {
	app *app.App
}

func NewUserHandler(app *app.App) *UserHandler {
	return &UserHandler{
		app: app,
	}
}

func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, err := h.app.UserService.GetMe(actorFrom(ctx))
	h.respondUser(ctx, http.StatusOK, user, err)
}

// HandleUpdateMe binds into a ProfilePatch, which has no role field, so a
// role in the payload is dropped before it reaches the service.
func (h *UserHandler) HandleUpdateMe(ctx *gin.Context) {
	var req domain.ProfilePatch
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := h.app.UserService.UpdateMe(actorFrom(ctx), req)
	h.respondUser(ctx, http.StatusOK, user, err)
}

func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.app.UserService.ListUsers(actorFrom(ctx), ctx.Query("search"))
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req domain.CreateUserInput
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := h.app.UserService.CreateUser(actorFrom(ctx), req)
	h.respondUser(ctx, http.StatusCreated, user, err)
}

func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	user, err := h.app.UserService.GetUser(actorFrom(ctx), ctx.Param("username"))
	h.respondUser(ctx, http.StatusOK, user, err)
}

func (h *UserHandler) HandleUpdateUser(ctx *gin.Context) {
	var req domain.UserPatch
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := h.app.UserService.UpdateUser(actorFrom(ctx), ctx.Param("username"), req)
	h.respondUser(ctx, http.StatusOK, user, err)
}

func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	if err := h.app.UserService.DeleteUser(actorFrom(ctx), ctx.Param("username")); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *UserHandler) respondUser(ctx *gin.Context, status int, user *model.User, err error) {
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(status, newUserResponse(user))
}

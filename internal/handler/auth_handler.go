package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

type AuthHandler struct {
	app *app.App
}

func NewAuthHandler(app *app.App) *AuthHandler {
	return &AuthHandler{
		app: app,
	}
}

func (h *AuthHandler) HandleSignUp(ctx *gin.Context) {
	var req domain.SignUpInput
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := h.app.UserService.SignUp(req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) HandleToken(ctx *gin.Context) {
	var req domain.TokenInput
	if !bindJSON(ctx, &req) {
		return
	}

	token, err := h.app.UserService.IssueToken(req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

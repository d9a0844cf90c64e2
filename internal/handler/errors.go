package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/service"
)

// respondError maps service and access errors onto HTTP responses.
// Validation failures return the field map as the body.
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		ctx.JSON(http.StatusBadRequest, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidConfirmationCode):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid confirmation code",
		})
	case errors.Is(err, access.ErrNotAuthenticated):
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Not authenticated",
			"message": "Authentication credentials were not provided",
		})
	case errors.Is(err, access.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "Permission denied",
			"message": "You do not have permission to perform this action",
		})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "The requested resource does not exist",
		})
	case errors.Is(err, service.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	default:
		logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to process request, please try again later",
		})
	}
}

// bindJSON decodes the request body into dst. An empty body leaves dst at
// its zero value so field validation can name what is missing.
func bindJSON(ctx *gin.Context, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return false
	}
	return true
}

// pathID reads a numeric path parameter; anything else is a missing resource.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "The requested resource does not exist",
		})
		return 0, false
	}
	return uint(id), true
}

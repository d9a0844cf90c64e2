package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service"
)

const actorKey = "actor"

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()),
		)
	}
}

func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", ctx.Request.URL.Path),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	})
}

// Authenticate resolves the bearer token into an actor. Requests without
// an Authorization header continue anonymously; a token that fails
// validation or names a deleted actor is rejected.
func Authenticate(app *app.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(ctx, "Malformed authorization header")
			return
		}
		claims, err := app.Tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(ctx, "Token is invalid or expired")
			return
		}

		actor, err := app.UserService.GetUserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				abortUnauthorized(ctx, "User not found")
				return
			}
			respondError(ctx, app.Logger, err)
			ctx.Abort()
			return
		}

		ctx.Set(actorKey, actor)
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Not authenticated",
		"message": message,
	})
}

// actorFrom returns the authenticated actor, or nil for anonymous requests.
func actorFrom(ctx *gin.Context) *model.User {
	if v, ok := ctx.Get(actorKey); ok {
		if actor, ok := v.(*model.User); ok {
			return actor
		}
	}
	return nil
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
)

// NewRouter registers every route under /api/v1. Unregistered methods on a
// known path answer 405, so PUT on users, titles, reviews and comments is
// refused.
func NewRouter(app *app.App) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestLogger(app.Logger), Recovery(app.Logger))

	authHandler := NewAuthHandler(app)
	userHandler := NewUserHandler(app)
	referenceHandler := NewReferenceHandler(app)
	titleHandler := NewTitleHandler(app)
	reviewHandler := NewReviewHandler(app)

	api := router.Group("/api/v1")
	api.Use(Authenticate(app))

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.HandleSignUp)
		auth.POST("/token", authHandler.HandleToken)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.HandleListUsers)
		users.POST("", userHandler.HandleCreateUser)
		users.GET("/me", userHandler.HandleGetMe)
		users.PATCH("/me", userHandler.HandleUpdateMe)
		users.GET("/:username", userHandler.HandleGetUser)
		users.PATCH("/:username", userHandler.HandleUpdateUser)
		users.DELETE("/:username", userHandler.HandleDeleteUser)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", referenceHandler.HandleListCategories)
		categories.POST("", referenceHandler.HandleCreateCategory)
		categories.DELETE("/:slug", referenceHandler.HandleDeleteCategory)
	}

	genres := api.Group("/genres")
	{
		genres.GET("", referenceHandler.HandleListGenres)
		genres.POST("", referenceHandler.HandleCreateGenre)
		genres.DELETE("/:slug", referenceHandler.HandleDeleteGenre)
	}

	titles := api.Group("/titles")
	{
		titles.GET("", titleHandler.HandleListTitles)
		titles.POST("", titleHandler.HandleCreateTitle)
		titles.GET("/:title_id", titleHandler.HandleGetTitle)
		titles.PATCH("/:title_id", titleHandler.HandleUpdateTitle)
		titles.DELETE("/:title_id", titleHandler.HandleDeleteTitle)

		titles.GET("/:title_id/reviews", reviewHandler.HandleListReviews)
		titles.POST("/:title_id/reviews", reviewHandler.HandleCreateReview)
		titles.GET("/:title_id/reviews/:review_id", reviewHandler.HandleGetReview)
		titles.PATCH("/:title_id/reviews/:review_id", reviewHandler.HandleUpdateReview)
		titles.DELETE("/:title_id/reviews/:review_id", reviewHandler.HandleDeleteReview)

		titles.GET("/:title_id/reviews/:review_id/comments", reviewHandler.HandleListComments)
		titles.POST("/:title_id/reviews/:review_id/comments", reviewHandler.HandleCreateComment)
		titles.GET("/:title_id/reviews/:review_id/comments/:comment_id", reviewHandler.HandleGetComment)
		titles.PATCH("/:title_id/reviews/:review_id/comments/:comment_id", reviewHandler.HandleUpdateComment)
		titles.DELETE("/:title_id/reviews/:review_id/comments/:comment_id", reviewHandler.HandleDeleteComment)
	}

	return router
}

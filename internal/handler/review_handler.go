package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

// ReviewHandler serves reviews nested under a title and comments nested
// under a review.
type ReviewHandler struct {
	app *app.App
}

func NewReviewHandler(app *app.App) *ReviewHandler {
	return &ReviewHandler{
		app: app,
	}
}

/*
* reviews
 */

func (h *ReviewHandler) HandleListReviews(ctx *gin.Context) {
	titleID, ok := pathID(ctx, "title_id")
	if !ok {
		return
	}
	reviews, err := h.app.ReviewService.ListReviews(titleID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	resp := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, newReviewResponse(&reviews[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) HandleGetReview(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	review, err := h.app.ReviewService.GetReview(titleID, reviewID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, newReviewResponse(review))
}

func (h *ReviewHandler) HandleCreateReview(ctx *gin.Context) {
	titleID, ok := pathID(ctx, "title_id")
	if !ok {
		return
	}
	var req domain.ReviewInput
	if !bindJSON(ctx, &req) {
		return
	}
	review, err := h.app.ReviewService.CreateReview(actorFrom(ctx), titleID, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, newReviewResponse(review))
}

func (h *ReviewHandler) HandleUpdateReview(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	var req domain.ReviewPatch
	if !bindJSON(ctx, &req) {
		return
	}
	review, err := h.app.ReviewService.UpdateReview(actorFrom(ctx), titleID, reviewID, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, newReviewResponse(review))
}

func (h *ReviewHandler) HandleDeleteReview(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	if err := h.app.ReviewService.DeleteReview(actorFrom(ctx), titleID, reviewID); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

/*
* comments
 */

func (h *ReviewHandler) HandleListComments(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	comments, err := h.app.CommentService.ListComments(titleID, reviewID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	resp := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, newCommentResponse(&comments[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) HandleGetComment(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "comment_id")
	if !ok {
		return
	}
	comment, err := h.app.CommentService.GetComment(titleID, reviewID, commentID)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *ReviewHandler) HandleCreateComment(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	var req domain.CommentInput
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := h.app.CommentService.CreateComment(actorFrom(ctx), titleID, reviewID, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, newCommentResponse(comment))
}

func (h *ReviewHandler) HandleUpdateComment(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "comment_id")
	if !ok {
		return
	}
	var req domain.CommentPatch
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := h.app.CommentService.UpdateComment(actorFrom(ctx), titleID, reviewID, commentID, req)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *ReviewHandler) HandleDeleteComment(ctx *gin.Context) {
	titleID, reviewID, ok := reviewPath(ctx)
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "comment_id")
	if !ok {
		return
	}
	if err := h.app.CommentService.DeleteComment(actorFrom(ctx), titleID, reviewID, commentID); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func reviewPath(ctx *gin.Context) (titleID, reviewID uint, ok bool) {
	if titleID, ok = pathID(ctx, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = pathID(ctx, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

package handler

import (
	"time"

	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service/domain"
)

type UserResponse struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Bio       string     `json:"bio"`
	Role      model.Role `json:"role"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// ReferenceResponse renders both categories and genres.
type ReferenceResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TitleResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Year        int                 `json:"year"`
	Rating      *float64            `json:"rating"`
	Description string              `json:"description"`
	Genre       []ReferenceResponse `json:"genre"`
	Category    ReferenceResponse   `json:"category"`
}

func newTitleResponse(t *domain.RatedTitle) TitleResponse {
	genres := make([]ReferenceResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, ReferenceResponse{Name: g.Name, Slug: g.Slug})
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    ReferenceResponse{Name: t.Category.Name, Slug: t.Category.Slug},
	}
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func newReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func newCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}

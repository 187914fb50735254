package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/models"
)

type reviewView struct {
	*models.Review
	Liked bool `json:"liked"`
}

type reviewRequest struct {
	BookTitle  string   `json:"bookTitle" binding:"required,max=200"`
	BookAuthor string   `json:"bookAuthor" binding:"required,max=200"`
	Rating     int      `json:"rating" binding:"required,min=1,max=5"`
	Content    string   `json:"content" binding:"required"`
	Images     []string `json:"images" binding:"omitempty,max=10"`
}

type updateReviewRequest struct {
	BookTitle  *string  `json:"bookTitle" binding:"omitempty,max=200"`
	BookAuthor *string  `json:"bookAuthor" binding:"omitempty,max=200"`
	Rating     *int     `json:"rating" binding:"omitempty,min=1,max=5"`
	Content    *string  `json:"content"`
	Images     []string `json:"images" binding:"omitempty,max=10"`
}

func (e *Env) ListReviews(c *gin.Context) {
	page := pageOf(c)
	reviews, total, err := e.Content.ListReviews(c.Request.Context(), c.Query("sort"), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: reviews, Page: page.Page, Total: total}, "")
}

func (e *Env) GetReview(c *gin.Context) {
	review, err := e.Content.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	liked, err := e.likedBy(c, models.KindReview, review.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, reviewView{Review: review, Liked: liked}, "")
}

func (e *Env) CreateReview(c *gin.Context) {
	var req reviewRequest
	if !bind(c, &req) {
		return
	}
	review, err := e.Content.CreateReview(c.Request.Context(), principal(c), content.ReviewInput{
		BookTitle:  req.BookTitle,
		BookAuthor: req.BookAuthor,
		Rating:     req.Rating,
		Content:    req.Content,
		Images:     req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, review, "Review created")
}

func (e *Env) UpdateReview(c *gin.Context) {
	var req updateReviewRequest
	if !bind(c, &req) {
		return
	}
	review, err := e.Content.UpdateReview(c.Request.Context(), principal(c), c.Param("id"), content.ReviewPatch{
		BookTitle:  req.BookTitle,
		BookAuthor: req.BookAuthor,
		Rating:     req.Rating,
		Content:    req.Content,
		Images:     req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, review, "Review updated")
}

func (e *Env) DeleteReview(c *gin.Context) {
	if err := e.Content.DeleteReview(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Review deleted")
}

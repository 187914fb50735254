package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/models"
)

type commentRequest struct {
	ParentType models.Kind `json:"parentType" binding:"required,oneof=post review product"`
	ParentID   string      `json:"parentId" binding:"required"`
	Content    string      `json:"content" binding:"required,max=2000"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

func (e *Env) ListComments(c *gin.Context) {
	parentType := models.Kind(c.Query("parentType"))
	parentID := c.Query("parentId")
	if parentType == "" || parentID == "" {
		fail(c, apperr.Invalid("parentType and parentId are required"))
		return
	}
	comments, err := e.Content.ListComments(c.Request.Context(), parentType, parentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: comments}, "")
}

func (e *Env) CreateComment(c *gin.Context) {
	var req commentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := e.Content.AddComment(c.Request.Context(), principal(c), req.ParentType, req.ParentID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment, "Comment added")
}

func (e *Env) UpdateComment(c *gin.Context) {
	var req updateCommentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := e.Content.UpdateComment(c.Request.Context(), principal(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment updated")
}

func (e *Env) DeleteComment(c *gin.Context) {
	if err := e.Content.DeleteComment(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Comment deleted")
}

func (e *Env) PurgeComment(c *gin.Context) {
	if err := e.Content.PurgeComment(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Comment deleted")
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/models"
)

// postView is a post as seen by the caller.
type postView struct {
	*models.Post
	Liked bool `json:"liked"`
}

type postRequest struct {
	Content string   `json:"content" binding:"required,max=5000"`
	Images  []string `json:"images" binding:"omitempty,max=10"`
}

type updatePostRequest struct {
	Content *string  `json:"content" binding:"omitempty,max=5000"`
	Images  []string `json:"images" binding:"omitempty,max=10"`
}

func (e *Env) ListPosts(c *gin.Context) {
	page := pageOf(c)
	posts, total, err := e.Content.ListPosts(c.Request.Context(), c.Query("sort"), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: posts, Page: page.Page, Total: total}, "")
}

func (e *Env) GetPost(c *gin.Context) {
	post, err := e.Content.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	liked, err := e.likedBy(c, models.KindPost, post.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, postView{Post: post, Liked: liked}, "")
}

func (e *Env) CreatePost(c *gin.Context) {
	var req postRequest
	if !bind(c, &req) {
		return
	}
	post, err := e.Content.CreatePost(c.Request.Context(), principal(c), content.PostInput{
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, post, "Post created")
}

func (e *Env) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if !bind(c, &req) {
		return
	}
	post, err := e.Content.UpdatePost(c.Request.Context(), principal(c), c.Param("id"), content.PostPatch{
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, post, "Post updated")
}

func (e *Env) DeletePost(c *gin.Context) {
	if err := e.Content.DeletePost(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Post deleted")
}

func (e *Env) SavePost(c *gin.Context) {
	if err := e.Users.SavePost(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Post saved")
}

func (e *Env) UnsavePost(c *gin.Context) {
	if err := e.Users.UnsavePost(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Post unsaved")
}

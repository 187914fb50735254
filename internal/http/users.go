package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/users"
)

// profileView adds the caller's follow state to a profile.
type profileView struct {
	*users.Profile
	IsFollowing bool `json:"isFollowing"`
}

type socialRequest struct {
	Website   string `json:"website" binding:"omitempty,url"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
}

type updateProfileRequest struct {
	Username *string        `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string        `json:"email" binding:"omitempty,email"`
	Avatar   *string        `json:"avatar"`
	Bio      *string        `json:"bio" binding:"omitempty,max=500"`
	Social   *socialRequest `json:"social"`
}

func (e *Env) GetProfile(c *gin.Context) {
	profile, err := e.Users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	view := profileView{Profile: profile}
	if viewer := principal(c); !viewer.IsAnonymous() && viewer.ID != profile.User.ID {
		view.IsFollowing, err = e.Users.IsFollowing(c.Request.Context(), viewer.ID, profile.User.ID)
		if err != nil {
			fail(c, err)
			return
		}
	}
	respond(c, http.StatusOK, view, "")
}

func (e *Env) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bind(c, &req) {
		return
	}
	patch := users.ProfilePatch{
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	}
	if req.Social != nil {
		patch.Social = &models.Social{
			Website:   req.Social.Website,
			Twitter:   req.Social.Twitter,
			Instagram: req.Social.Instagram,
			Facebook:  req.Social.Facebook,
		}
	}
	user, err := e.Users.UpdateProfile(c.Request.Context(), principal(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "Profile updated")
}

func (e *Env) Follow(c *gin.Context) {
	if err := e.Users.Follow(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Followed")
}

func (e *Env) Unfollow(c *gin.Context) {
	if err := e.Users.Unfollow(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Unfollowed")
}

func (e *Env) SavedPosts(c *gin.Context) {
	posts, err := e.Users.SavedPosts(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: posts}, "")
}

func (e *Env) UserPosts(c *gin.Context) {
	page := pageOf(c)
	posts, total, err := e.Content.ListPostsByAuthor(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: posts, Page: page.Page, Total: total}, "")
}

func (e *Env) UserReviews(c *gin.Context) {
	page := pageOf(c)
	reviews, total, err := e.Content.ListReviewsByAuthor(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: reviews, Page: page.Page, Total: total}, "")
}

func (e *Env) UserProducts(c *gin.Context) {
	page := pageOf(c)
	products, total, err := e.Catalog.ListBySeller(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: products, Page: page.Page, Total: total}, "")
}

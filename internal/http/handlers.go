package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/analytics"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/catalog"
	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/moderation"
	"github.com/sujalbistaa/bookit/internal/orders"
	"github.com/sujalbistaa/bookit/internal/pagination"
	"github.com/sujalbistaa/bookit/internal/users"
)

// Env carries the services every handler needs.
type Env struct {
	Auth       *auth.Service
	Users      *users.Service
	Content    *content.Service
	Catalog    *catalog.Service
	Orders     *orders.Service
	Moderation *moderation.Service
	Analytics  *analytics.Service
	Log        *zap.Logger
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func pageOf(c *gin.Context) pagination.Page {
	return pagination.Parse(c.Query("page"), c.Query("limit"))
}

func (e *Env) Health(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Bookit API running"})
}

func (e *Env) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	user, token, err := e.Auth.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	requestLogger(c).Info("User registered", zap.String("user_id", user.ID))
	respond(c, http.StatusCreated, authResponse{Token: token, User: user}, "Registered")
}

func (e *Env) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	user, token, err := e.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, authResponse{Token: token, User: user}, "Logged in")
}

func (e *Env) Me(c *gin.Context) {
	user, _ := c.Get(ctxUser)
	respond(c, http.StatusOK, user, "")
}

// Logout has nothing to revoke; tokens are stateless and clients drop them.
func (e *Env) Logout(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"ok": true}, "Logged out")
}

type reportRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// fileReport returns a handler that reports the :id entity of kind.
func (e *Env) fileReport(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reportRequest
		if !bind(c, &req) {
			return
		}
		target := moderation.Target{Kind: kind, ID: c.Param("id")}
		if _, err := e.Moderation.File(c.Request.Context(), principal(c), target, req.Reason); err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, gin.H{"ok": true}, "Report submitted")
	}
}

// likedBy reports whether the caller likes the entity; anonymous callers
// never do.
func (e *Env) likedBy(c *gin.Context, kind models.Kind, id string) (bool, error) {
	p := principal(c)
	if p.IsAnonymous() {
		return false, nil
	}
	return e.Content.HasLiked(c.Request.Context(), p.ID, kind, id)
}

// like returns a handler that adds or removes the caller's like on the
// :id entity of kind and answers with the new count.
func (e *Env) like(kind models.Kind, add bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		toggle := e.Content.Unlike
		if add {
			toggle = e.Content.Like
		}
		count, err := toggle(c.Request.Context(), principal(c), kind, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"likesCount": count}, "")
	}
}

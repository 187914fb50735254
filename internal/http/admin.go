package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/moderation"
	"github.com/sujalbistaa/bookit/internal/users"
)

type resolveRequest struct {
	Action    models.ReportAction `json:"action" binding:"omitempty,oneof=none deleted warned banned"`
	Status    models.ReportStatus `json:"status" binding:"omitempty,oneof=open resolved dismissed"`
	AdminNote string              `json:"adminNote" binding:"max=1000"`
}

func (e *Env) ListReports(c *gin.Context) {
	reports, err := e.Moderation.List(c.Request.Context(), principal(c), models.ReportStatus(c.Query("status")))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: reports}, "")
}

func (e *Env) ResolveReport(c *gin.Context) {
	var req resolveRequest
	if !bind(c, &req) {
		return
	}
	report, err := e.Moderation.Resolve(c.Request.Context(), principal(c), c.Param("id"), moderation.Resolution{
		Action:    req.Action,
		Status:    req.Status,
		AdminNote: req.AdminNote,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, report, "Report updated")
}

func (e *Env) ListUsers(c *gin.Context) {
	list, err := e.Users.List(c.Request.Context(), principal(c), users.ListFilter{
		Query: c.Query("q"),
		Role:  models.Role(c.Query("role")),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: list}, "")
}

func (e *Env) ToggleBan(c *gin.Context) {
	user, err := e.Users.ToggleBan(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	message := "User unbanned"
	if user.IsBanned {
		message = "User banned"
	}
	respond(c, http.StatusOK, user, message)
}

func (e *Env) AnalyticsDashboard(c *gin.Context) {
	dashboard, err := e.Analytics.Dashboard(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dashboard, "")
}

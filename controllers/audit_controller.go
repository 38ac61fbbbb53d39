package controllers

import (
	"net/http"
	"strconv"

	"boardshare/app"

	"github.com/gin-gonic/gin"
)

type AuditController struct{ *Srv }

func NewAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// List returns lending-record transition history, optionally filtered to
// one record.
func (ac *AuditController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	entries, err := ac.Repo.ListAuditEntries(c.Request.Context(), c.Query("recordId"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"entries": entries})
}

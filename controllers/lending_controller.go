package controllers

import (
	"net/http"
	"time"

	"boardshare/app"
	"boardshare/db"
	"boardshare/models"

	"github.com/gin-gonic/gin"
)

type LendingController struct{ *Srv }

func NewLendingController(s *Srv) *LendingController { return &LendingController{Srv: s} }

// loadOwnedRecord fetches the record and enforces that the caller owns it
// (or is an admin). Returns nil after writing the response on failure.
func (lc *LendingController) loadOwnedRecord(c *gin.Context) (*models.LendingRecord, db.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return nil, db.Actor{}, false
	}
	rec, err := lc.Repo.FindLendingRecordByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return nil, db.Actor{}, false
	}
	if rec.OwnerID != actor.ID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return nil, db.Actor{}, false
	}
	return rec, actor, true
}

func (lc *LendingController) Get(c *gin.Context) {
	rec, err := lc.Repo.FindLendingRecordByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"record":          rec,
		"effectiveStatus": rec.EffectiveStatus(time.Now().UTC()),
	})
}

func (lc *LendingController) List(c *gin.Context) {
	recs, err := lc.Repo.ListLendingRecords(c.Request.Context(), db.LendingRecordQuery{
		OwnerID:        c.Query("ownerId"),
		RequestID:      c.Query("requestId"),
		GameInstanceID: c.Query("gameInstanceId"),
		Status:         c.Query("status"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

// ListOverdue is the on-demand overdue report; nothing sweeps in the
// background.
func (lc *LendingController) ListOverdue(c *gin.Context) {
	recs, err := lc.Repo.FindOverdueRecords(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

func (lc *LendingController) UpdateStatus(c *gin.Context) {
	rec, actor, ok := lc.loadOwnedRecord(c)
	if !ok {
		return
	}
	var in struct {
		Status models.LendingStatus `json:"status" binding:"required"`
		Reason string               `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updated, overridden, err := lc.Repo.UpdateLendingStatus(c.Request.Context(), rec.ID, in.Status, actor, in.Reason)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"record": updated, "overdueOverride": overridden})
}

func (lc *LendingController) Close(c *gin.Context) {
	rec, actor, ok := lc.loadOwnedRecord(c)
	if !ok {
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)
	updated, err := lc.Repo.CloseLendingRecord(c.Request.Context(), rec.ID, actor, in.Reason)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (lc *LendingController) CloseWithDamage(c *gin.Context) {
	rec, actor, ok := lc.loadOwnedRecord(c)
	if !ok {
		return
	}
	var in struct {
		IsDamaged bool   `json:"isDamaged"`
		Notes     string `json:"notes"`
		Severity  int    `json:"severity"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updated, err := lc.Repo.CloseLendingRecordWithDamage(c.Request.Context(), rec.ID, in.IsDamaged, in.Notes, in.Severity, actor, in.Reason)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (lc *LendingController) UpdateEndDate(c *gin.Context) {
	rec, actor, ok := lc.loadOwnedRecord(c)
	if !ok {
		return
	}
	var in struct {
		EndDate time.Time `json:"endDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updated, err := lc.Repo.UpdateLendingEndDate(c.Request.Context(), rec.ID, in.EndDate, actor)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (lc *LendingController) Delete(c *gin.Context) {
	rec, actor, ok := lc.loadOwnedRecord(c)
	if !ok {
		return
	}
	if err := lc.Repo.DeleteLendingRecord(c.Request.Context(), rec.ID, actor); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

package controllers

import (
	"net/http"
	"time"

	"boardshare/app"
	"boardshare/db"
	"boardshare/models"

	"github.com/gin-gonic/gin"
)

type BorrowRequestController struct{ *Srv }

func NewBorrowRequestController(s *Srv) *BorrowRequestController {
	return &BorrowRequestController{Srv: s}
}

// Create admits a borrow request for a specific copy and interval. The
// requester is the authenticated caller; ownership and conflict rules live
// in the repo transaction.
func (bc *BorrowRequestController) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		GameID         string    `json:"gameId" binding:"required"`
		GameInstanceID string    `json:"gameInstanceId" binding:"required"`
		StartDate      time.Time `json:"startDate" binding:"required"`
		EndDate        time.Time `json:"endDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	req, err := bc.Repo.CreateBorrowRequest(c.Request.Context(), db.CreateBorrowRequestInput{
		RequesterID:    actor.ID,
		GameID:         in.GameID,
		GameInstanceID: in.GameInstanceID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	})
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// UpdateStatus approves or declines a pending request. Only the owner of
// the requested copy may decide; the ownership data comes from the core,
// the policy check stays here at the boundary.
func (bc *BorrowRequestController) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		Status models.RequestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	req, err := bc.Repo.FindBorrowRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	inst, err := bc.Repo.FindGameInstanceByID(c.Request.Context(), req.GameInstanceID)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	if inst.OwnerID != actor.ID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}

	updated, err := bc.Repo.UpdateBorrowRequestStatus(c.Request.Context(), req.ID, in.Status, actor)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateDetails edits the dates of a pending request. Requester only.
func (bc *BorrowRequestController) UpdateDetails(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	req, err := bc.Repo.FindBorrowRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	if req.RequesterID != actor.ID {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}

	updated, err := bc.Repo.UpdateBorrowRequestDetails(c.Request.Context(), req.ID, in.StartDate, in.EndDate)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (bc *BorrowRequestController) Get(c *gin.Context) {
	req, err := bc.Repo.FindBorrowRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (bc *BorrowRequestController) List(c *gin.Context) {
	reqs, err := bc.Repo.ListBorrowRequests(c.Request.Context(), db.BorrowRequestQuery{
		RequesterID:    c.Query("requesterId"),
		GameID:         c.Query("gameId"),
		GameInstanceID: c.Query("gameInstanceId"),
		Status:         c.Query("status"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": reqs})
}

func (bc *BorrowRequestController) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	req, err := bc.Repo.FindBorrowRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	if req.RequesterID != actor.ID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	if err := bc.Repo.DeleteBorrowRequest(c.Request.Context(), req.ID); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

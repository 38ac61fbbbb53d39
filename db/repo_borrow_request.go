package db

import (
	"boardshare/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBorrowRequestInput struct {
	RequesterID    string
	GameID         string
	GameInstanceID string
	StartDate      time.Time
	EndDate        time.Time
}

// CreateBorrowRequest admits a new PENDING request. The whole check-then-
// insert runs in one transaction holding a row lock on the copy, so two
// concurrent admissions for the same copy serialize. Not idempotent:
// duplicate submissions create duplicate PENDING rows, which is harmless
// because only APPROVED rows participate in conflict checks.
func (r *Repo) CreateBorrowRequest(ctx context.Context, in CreateBorrowRequestInput) (*models.BorrowRequest, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidPeriod
	}
	var req *models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Game
		if err := tx.First(&g, "id = ?", in.GameID).Error; err != nil {
			return err
		}
		var inst models.GameInstance
		if err := lockForUpdate(tx).First(&inst, "id = ?", in.GameInstanceID).Error; err != nil {
			return err
		}
		if inst.GameID != g.ID {
			return ErrInstanceMismatch
		}
		if inst.OwnerID == in.RequesterID {
			return ErrOwnCopy
		}
		free, err := r.instanceFreeForPeriod(tx, inst.ID, in.StartDate, in.EndDate, "")
		if err != nil {
			return err
		}
		if !free {
			return ErrUnavailableForPeriod
		}

		req = &models.BorrowRequest{
			ID:             uuid.NewString(),
			GameID:         g.ID,
			GameInstanceID: inst.ID,
			RequesterID:    in.RequesterID,
			StartDate:      in.StartDate,
			EndDate:        in.EndDate,
			Status:         models.RequestPending,
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateBorrowRequestStatus moves a PENDING request to APPROVED or
// DECLINED. Approval locks the copy, re-validates availability, creates the
// lending record and flips the copy unavailable — one atomic unit: if record
// creation fails, the transaction rolls back and the request stays PENDING.
func (r *Repo) UpdateBorrowRequestStatus(ctx context.Context, requestID string, target models.RequestStatus, actor Actor) (*models.BorrowRequest, error) {
	if target != models.RequestApproved && target != models.RequestDeclined {
		return nil, ErrBadStatus
	}
	var req models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return ErrNotPending
		}

		if target == models.RequestDeclined {
			req.Status = models.RequestDeclined
			return tx.Save(&req).Error
		}

		var inst models.GameInstance
		if err := lockForUpdate(tx).First(&inst, "id = ?", req.GameInstanceID).Error; err != nil {
			return err
		}
		if inst.OwnerID == "" {
			return ErrNoOwner
		}
		var owner models.Account
		if err := tx.First(&owner, "id = ?", inst.OwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOwner
			}
			return err
		}
		if !inst.Available {
			return ErrCopyUnavailable
		}
		free, err := r.instanceFreeForPeriod(tx, inst.ID, req.StartDate, req.EndDate, req.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrUnavailableForPeriod
		}

		if _, err := r.createLendingRecordTx(tx, req.StartDate, req.EndDate, &req, &owner, actor); err != nil {
			return err
		}

		req.Status = models.RequestApproved
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateBorrowRequestDetails edits the dates of a PENDING request,
// re-running the conflict check against the same copy with the edited
// request itself excluded. A nil date keeps the stored value.
func (r *Repo) UpdateBorrowRequestDetails(ctx context.Context, requestID string, newStart, newEnd *time.Time) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return ErrNotPending
		}
		start, end := req.StartDate, req.EndDate
		if newStart != nil {
			start = *newStart
		}
		if newEnd != nil {
			end = *newEnd
		}
		if !end.After(start) {
			return ErrInvalidPeriod
		}
		free, err := r.instanceFreeForPeriod(tx, req.GameInstanceID, start, end, req.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrUnavailableForPeriod
		}
		req.StartDate, req.EndDate = start, end
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DeleteBorrowRequest removes a request. Blocked while an associated
// lending record is still open; a CLOSED record does not block.
func (r *Repo) DeleteBorrowRequest(ctx context.Context, requestID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.BorrowRequest
		if err := lockForUpdate(tx).First(&req, "id = ?", requestID).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.LendingRecord{}).
			Where("request_id = ? AND status <> ?", req.ID, models.LendingClosed).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrRequestLent
		}
		return tx.Delete(&req).Error
	})
}

func (r *Repo) FindBorrowRequestByID(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

type BorrowRequestQuery struct {
	RequesterID    string
	GameID         string
	GameInstanceID string
	Status         string
}

func (r *Repo) ListBorrowRequests(ctx context.Context, q BorrowRequestQuery) ([]models.BorrowRequest, error) {
	tx := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).Order("created_at DESC")
	if q.RequesterID != "" {
		tx = tx.Where("requester_id = ?", q.RequesterID)
	}
	if q.GameID != "" {
		tx = tx.Where("game_id = ?", q.GameID)
	}
	if q.GameInstanceID != "" {
		tx = tx.Where("game_instance_id = ?", q.GameInstanceID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	var reqs []models.BorrowRequest
	if err := tx.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

package db

import (
	"boardshare/models"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grace window for "start must not be in the past": tolerates clock and
// processing skew between the caller building the dates and the insert.
const startGrace = time.Second

// CreateLendingRecord creates an ACTIVE record for an approved request.
// Exposed for callers that manage their own approval flow; the approval
// workflow uses the Tx variant inside its own transaction.
func (r *Repo) CreateLendingRecord(ctx context.Context, start, end time.Time, req *models.BorrowRequest, owner *models.Account, actor Actor) (*models.LendingRecord, error) {
	if req == nil || owner == nil || start.IsZero() || end.IsZero() {
		return nil, ErrMissingInput
	}
	var rec *models.LendingRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = r.createLendingRecordTx(tx, start, end, req, owner, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// createLendingRecordTx validates and persists the record, then marks the
// requested copy unavailable. Failure here must roll back the caller's
// whole transaction so the request is never left half-approved.
func (r *Repo) createLendingRecordTx(tx *gorm.DB, start, end time.Time, req *models.BorrowRequest, owner *models.Account, actor Actor) (*models.LendingRecord, error) {
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}
	if start.Before(time.Now().UTC().Add(-startGrace)) {
		return nil, ErrStartInPast
	}

	var inst models.GameInstance
	if err := lockForUpdate(tx).First(&inst, "id = ?", req.GameInstanceID).Error; err != nil {
		return nil, err
	}
	if inst.OwnerID != owner.ID {
		return nil, ErrOwnerMismatch
	}

	var n int64
	if err := tx.Model(&models.LendingRecord{}).
		Where("request_id = ?", req.ID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAlreadyLent
	}

	rec := &models.LendingRecord{
		ID:             uuid.NewString(),
		RequestID:      req.ID,
		GameInstanceID: inst.ID,
		OwnerID:        owner.ID,
		StartDate:      start,
		EndDate:        end,
		Status:         models.LendingActive,
	}
	if err := tx.Create(rec).Error; err != nil {
		return nil, err
	}

	res := tx.Model(&models.GameInstance{}).
		Where("id = ? AND available = ?", inst.ID, true).
		Update("available", false)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Copy was already dark; the record still stands. Observable, not fatal.
		log.Printf("lending: instance %s already unavailable when lending record %s was created", inst.ID, rec.ID)
	}

	if err := r.writeAuditTx(tx, rec.ID, actor, "", models.LendingActive, "lending record created"); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateLendingStatus applies a manual status transition. Transitions where
// the target equals the current status short-circuit as a no-op success.
// CLOSED is terminal. Asking for ACTIVE on a record whose end date has
// passed silently applies OVERDUE instead; the returned bool reports that
// override.
func (r *Repo) UpdateLendingStatus(ctx context.Context, recordID string, target models.LendingStatus, actor Actor, reason string) (*models.LendingRecord, bool, error) {
	switch target {
	case models.LendingActive, models.LendingOverdue, models.LendingClosed:
	default:
		return nil, false, ErrBadStatus
	}

	var rec models.LendingRecord
	overridden := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		applied := target
		if target == models.LendingActive && rec.IsOverdue(now) {
			applied = models.LendingOverdue
			overridden = true
		}
		if rec.Status == applied {
			return nil
		}
		if rec.Status == models.LendingClosed {
			return ErrRecordClosed
		}

		if applied == models.LendingClosed {
			return r.closeTx(tx, &rec, actor, reason, now)
		}

		from := rec.Status
		rec.Status = applied
		rec.LastModifiedBy = actor.ID
		rec.LastModifiedAt = &now
		rec.StatusReason = reason
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		return r.writeAuditTx(tx, rec.ID, actor, from, applied, reason)
	})
	if err != nil {
		return nil, false, err
	}
	return &rec, overridden, nil
}

// closeTx stamps and persists the CLOSED state, then restores the copy's
// availability. Caller holds the record lock and has ruled out CLOSED.
func (r *Repo) closeTx(tx *gorm.DB, rec *models.LendingRecord, actor Actor, reason string, now time.Time) error {
	from := rec.Status
	rec.Status = models.LendingClosed
	rec.LastModifiedBy = actor.ID
	rec.LastModifiedAt = &now
	rec.StatusReason = reason
	if err := tx.Save(rec).Error; err != nil {
		return err
	}

	res := tx.Model(&models.GameInstance{}).
		Where("id = ? AND available = ?", rec.GameInstanceID, false).
		Update("available", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("lending: instance %s already available when lending record %s was closed", rec.GameInstanceID, rec.ID)
	}

	return r.writeAuditTx(tx, rec.ID, actor, from, models.LendingClosed, reason)
}

// CloseLendingRecord closes an open record and restores the copy.
func (r *Repo) CloseLendingRecord(ctx context.Context, recordID string, actor Actor, reason string) (*models.LendingRecord, error) {
	var rec models.LendingRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		if rec.Status == models.LendingClosed {
			return ErrRecordClosed
		}
		return r.closeTx(tx, &rec, actor, reason, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CloseLendingRecordWithDamage records the damage assessment, then closes.
// Severity runs 0 (none) to 3 (severe); out-of-range is rejected before any
// state changes.
func (r *Repo) CloseLendingRecordWithDamage(ctx context.Context, recordID string, isDamaged bool, notes string, severity int, actor Actor, reason string) (*models.LendingRecord, error) {
	if severity < models.DamageSeverityNone || severity > models.DamageSeverityMax {
		return nil, ErrDamageSeverity
	}
	var rec models.LendingRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		if rec.Status == models.LendingClosed {
			return ErrRecordClosed
		}
		now := time.Now().UTC()
		rec.IsDamaged = isDamaged
		rec.DamageNotes = notes
		rec.DamageSeverity = severity
		rec.DamageAssessedAt = &now
		return r.closeTx(tx, &rec, actor, reason, now)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateLendingEndDate moves the due date of an open record.
func (r *Repo) UpdateLendingEndDate(ctx context.Context, recordID string, newEnd time.Time, actor Actor) (*models.LendingRecord, error) {
	var rec models.LendingRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		if rec.Status == models.LendingClosed {
			return ErrRecordClosed
		}
		if newEnd.Before(rec.StartDate) {
			return ErrInvalidPeriod
		}
		now := time.Now().UTC()
		rec.EndDate = newEnd
		rec.LastModifiedBy = actor.ID
		rec.LastModifiedAt = &now
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteLendingRecord removes a record. A record that is effectively ACTIVE
// (stored ACTIVE and not yet past its end date) cannot be deleted. Deleting
// an open OVERDUE record releases its copy, since nothing else governs the
// availability flag afterwards.
func (r *Repo) DeleteLendingRecord(ctx context.Context, recordID string, actor Actor) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.LendingRecord
		if err := lockForUpdate(tx).First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		if rec.EffectiveStatus(now) == models.LendingActive {
			return ErrRecordActive
		}
		if rec.Status != models.LendingClosed {
			res := tx.Model(&models.GameInstance{}).
				Where("id = ? AND available = ?", rec.GameInstanceID, false).
				Update("available", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				log.Printf("lending: released instance %s on deletion of open record %s", rec.GameInstanceID, rec.ID)
			}
		}
		return tx.Delete(&rec).Error
	})
}

func (r *Repo) FindLendingRecordByID(ctx context.Context, id string) (*models.LendingRecord, error) {
	var rec models.LendingRecord
	if err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindOverdueRecords reports every open record past its end date: ACTIVE
// rows where lazy detection has not run yet, plus rows already stamped
// OVERDUE. No sweep marks them; detection happens on the next transition.
func (r *Repo) FindOverdueRecords(ctx context.Context) ([]models.LendingRecord, error) {
	now := time.Now().UTC()
	var recs []models.LendingRecord
	err := r.DB.WithContext(ctx).
		Where("(status = ? AND end_date < ?) OR status = ?",
			models.LendingActive, now, models.LendingOverdue).
		Order("end_date ASC").
		Find(&recs).Error
	return recs, err
}

type LendingRecordQuery struct {
	OwnerID        string
	RequestID      string
	GameInstanceID string
	Status         string
}

func (r *Repo) ListLendingRecords(ctx context.Context, q LendingRecordQuery) ([]models.LendingRecord, error) {
	tx := r.DB.WithContext(ctx).Model(&models.LendingRecord{}).Order("created_at DESC")
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.RequestID != "" {
		tx = tx.Where("request_id = ?", q.RequestID)
	}
	if q.GameInstanceID != "" {
		tx = tx.Where("game_instance_id = ?", q.GameInstanceID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	var recs []models.LendingRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

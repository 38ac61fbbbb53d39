package db

import (
	"boardshare/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// writeAuditTx records a lending-record transition in the same transaction
// that performs it. FromStatus is empty for record creation.
func (r *Repo) writeAuditTx(tx *gorm.DB, recordID string, actor Actor, from, to models.LendingStatus, reason string) error {
	entry := &models.AuditEntry{
		ID:            uuid.NewString(),
		RecordID:      recordID,
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		FromStatus:    from,
		ToStatus:      to,
	}
	if reason != "" {
		entry.Reason = &reason
	}
	return tx.Create(entry).Error
}

func (r *Repo) ListAuditEntries(ctx context.Context, recordID string, page, size int) ([]models.AuditEntry, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	tx := r.DB.WithContext(ctx).Model(&models.AuditEntry{}).Order("created_at DESC")
	if recordID != "" {
		tx = tx.Where("record_id = ?", recordID)
	}
	var entries []models.AuditEntry
	err := tx.Offset((page - 1) * size).Limit(size).Find(&entries).Error
	return entries, err
}

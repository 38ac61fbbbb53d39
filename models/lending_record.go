package models

import "time"

const LendingRecordTable = "bgs_lending_records"

type LendingStatus string

const (
	LendingActive  LendingStatus = "ACTIVE"
	LendingOverdue LendingStatus = "OVERDUE"
	LendingClosed  LendingStatus = "CLOSED"
)

// Damage severity bounds for damage-assessed closing.
const (
	DamageSeverityNone = 0
	DamageSeverityMax  = 3
)

// LendingRecord is the authoritative record of a loan, created only when a
// BorrowRequest is approved. RequestID carries a unique index so a request
// can produce at most one record. GameInstanceID pins the exact copy being
// lent; approval and close toggle that copy's availability.
type LendingRecord struct {
	ID             string        `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID      string        `gorm:"type:uuid;uniqueIndex;not null" json:"requestId"`
	GameInstanceID string        `gorm:"type:uuid;index;not null" json:"gameInstanceId"`
	OwnerID        string        `gorm:"type:uuid;index;not null" json:"ownerId"`
	StartDate      time.Time     `gorm:"not null" json:"startDate"`
	EndDate        time.Time     `gorm:"index;not null" json:"endDate"`
	Status         LendingStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`

	IsDamaged        bool       `gorm:"not null;default:false" json:"isDamaged"`
	DamageNotes      string     `gorm:"size:1000" json:"damageNotes,omitempty"`
	DamageSeverity   int        `gorm:"not null;default:0" json:"damageSeverity"`
	DamageAssessedAt *time.Time `json:"damageAssessedAt,omitempty"`

	LastModifiedBy string     `gorm:"type:uuid" json:"lastModifiedBy,omitempty"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
	StatusReason   string     `gorm:"size:255" json:"statusReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LendingRecord) TableName() string { return LendingRecordTable }

// IsOverdue reports whether the record's end date has passed at the given
// instant. Overdue is detected, not polled: callers evaluate this whenever
// a status-changing operation runs.
func (r *LendingRecord) IsOverdue(now time.Time) bool {
	return r.EndDate.Before(now)
}

// EffectiveStatus folds lazy overdue detection into the stored status.
func (r *LendingRecord) EffectiveStatus(now time.Time) LendingStatus {
	if r.Status == LendingActive && r.IsOverdue(now) {
		return LendingOverdue
	}
	return r.Status
}

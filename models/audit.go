package models

import "time"

// AuditEntry records a lending-record status transition. Written in the
// same transaction as the transition itself.
type AuditEntry struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	RecordID      string        `gorm:"type:uuid;index;not null" json:"recordId"`
	ActorID       string        `gorm:"type:uuid" json:"actorId"`
	ActorUsername string        `json:"actorUsername"`
	FromStatus    LendingStatus `gorm:"size:20" json:"fromStatus"`
	ToStatus      LendingStatus `gorm:"size:20" json:"toStatus"`
	Reason        *string       `json:"reason,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (AuditEntry) TableName() string { return "bgs_lending_audit" }

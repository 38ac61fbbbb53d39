package models

import "time"

const BorrowRequestTable = "bgs_borrow_requests"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestDeclined RequestStatus = "DECLINED"
)

// BorrowRequest is a member's proposal to borrow a specific copy for
// [StartDate, EndDate). Only APPROVED rows participate in conflict checks,
// so duplicate PENDING submissions are harmless.
type BorrowRequest struct {
	ID             string        `gorm:"type:uuid;primaryKey" json:"id"`
	GameID         string        `gorm:"type:uuid;index;not null" json:"gameId"`
	GameInstanceID string        `gorm:"type:uuid;index;not null" json:"gameInstanceId"`
	RequesterID    string        `gorm:"type:uuid;index;not null" json:"requesterId"`
	StartDate      time.Time     `gorm:"not null" json:"startDate"`
	EndDate        time.Time     `gorm:"not null" json:"endDate"`
	Status         RequestStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return BorrowRequestTable }

// Overlaps reports whether [s1,e1) and [s2,e2) share at least one instant.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

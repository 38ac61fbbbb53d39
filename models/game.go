package models

import "time"

const GameTable = "bgs_games"
const GameInstanceTable = "bgs_game_instances"

// Game is a catalog entry. One Game may have many physical copies.
type Game struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string `gorm:"size:200;not null" json:"name"`
	MinPlayers int    `gorm:"not null;default:1" json:"minPlayers"`
	MaxPlayers int    `gorm:"not null;default:1" json:"maxPlayers"`
	Category   string `gorm:"size:100" json:"category"`
	OwnerID    string `gorm:"type:uuid;index;not null" json:"ownerId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GameInstance is a specific physical copy of a Game, independently
// trackable for availability. Available mirrors "no ACTIVE/OVERDUE lending
// record governs this copy"; it is flipped by the lending engine, never
// derived on read.
type GameInstance struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	GameID      string     `gorm:"type:uuid;index;not null" json:"gameId"`
	OwnerID     string     `gorm:"type:uuid;index;not null" json:"ownerId"`
	Available   bool       `gorm:"not null;default:true" json:"available"`
	Condition   string     `gorm:"size:255" json:"condition"`
	Location    string     `gorm:"size:255" json:"location"`
	DisplayName string     `gorm:"size:200" json:"displayName,omitempty"`
	AcquiredAt  *time.Time `json:"acquiredAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Game) TableName() string         { return GameTable }
func (GameInstance) TableName() string { return GameInstanceTable }

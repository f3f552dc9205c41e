package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Battle types as stored on a BattleRecord. The initiator's record side is
// "active", the recipient's is "passive".
const (
	BattleTypeActive  = "active"
	BattleTypePassive = "passive"
)

// BattleRecord is the append-only audit log of one resolved battle. It is
// written exactly once and never mutated or deleted; all history and
// analytics derive from it.
type BattleRecord struct {
	ID         string `gorm:"primaryKey" json:"id"`
	AttackerID string `gorm:"index;not null" json:"attacker_id"`
	DefenderID string `gorm:"index;not null" json:"defender_id"`
	BattleType string `gorm:"not null" json:"battle_type"`
	WinnerID   string `gorm:"not null" json:"winner_id"`

	AttackerScoreDelta int `json:"attacker_score_delta"`
	DefenderScoreDelta int `json:"defender_score_delta"`
	AttackerEloDelta   int `json:"attacker_elo_delta"`
	DefenderEloDelta   int `json:"defender_elo_delta"`

	Judgment  string `gorm:"type:text" json:"judgment"`
	Reasoning string `gorm:"type:text" json:"reasoning"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a new UUID for the record if the ID is not set.
func (b *BattleRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

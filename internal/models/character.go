package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Animal is a playable archetype. Attack, Strength, Speed and Energy feed
// the combat-power part of the battle score; Defense and Intelligence are
// used by matchmaking aggregates. Seeded at startup, never user-created.
type Animal struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"uniqueIndex;not null" json:"name"`
	Attack       int    `json:"attack"`
	Strength     int    `json:"strength"`
	Speed        int    `json:"speed"`
	Energy       int    `json:"energy"`
	Defense      int    `json:"defense"`
	Intelligence int    `json:"intelligence"`
}

// Character is a player's fighter, bound to one animal archetype. It is
// never hard-deleted; IsActive acts as the soft-delete flag.
type Character struct {
	ID         string `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"index;not null" json:"user_id"`
	AnimalID   uint   `gorm:"not null" json:"animal_id"`
	Animal     Animal `json:"animal"`
	Name       string `gorm:"not null" json:"name"`
	BattleText string `gorm:"type:text" json:"battle_text"`

	BaseScore int `gorm:"default:1000" json:"base_score"`
	EloScore  int `gorm:"default:1500" json:"elo_score"`

	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	TotalBattles int `json:"total_battles"`

	// ActiveBattlesToday counts attacker-initiated battles against non-bot
	// opponents since LastBattleResetAt's day. Bot opponents are exempt.
	ActiveBattlesToday int       `json:"active_battles_today"`
	LastBattleResetAt  time.Time `json:"last_battle_reset_at"`

	IsBot    bool `json:"is_bot"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate generates a new UUID for the character if the ID is not set.
func (c *Character) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Level is derived from wins rather than persisted: every five wins is one
// level, starting at 1.
func (c *Character) Level() int {
	return 1 + c.Wins/5
}

// WinRate returns the character's win percentage in [0,100].
func (c *Character) WinRate() float64 {
	if c.TotalBattles == 0 {
		return 0
	}
	return float64(c.Wins) / float64(c.TotalBattles) * 100
}

package models

import "time"

// BattleEvent is the payload broadcast on the spectator feed after a battle
// resolves. It is a read-only projection of the BattleRecord plus display
// names, published via Redis so every instance shares one feed.
type BattleEvent struct {
	BattleID      string    `json:"battle_id"`
	AttackerID    string    `json:"attacker_id"`
	AttackerName  string    `json:"attacker_name"`
	DefenderID    string    `json:"defender_id"`
	DefenderName  string    `json:"defender_name"`
	WinnerID      string    `json:"winner_id"`
	AttackerScore float64   `json:"attacker_score"`
	DefenderScore float64   `json:"defender_score"`
	Judgment      string    `json:"judgment"`
	ResolvedAt    time.Time `json:"resolved_at"`
}

// LeaderboardEntry is one row of the derived leaderboard view, ordered by
// (base score desc, elo score desc).
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	AnimalName    string `json:"animal_name"`
	BaseScore     int    `json:"base_score"`
	EloScore      int    `json:"elo_score"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
}

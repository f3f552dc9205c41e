// Package matchmaking ranks candidate opponents for a requesting player by
// statistical closeness, under a selectable strategy.
package matchmaking

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
)

// Mode selects the opponent-selection strategy.
type Mode string

const (
	ModeBalanced Mode = "balanced"
	ModeEasy     Mode = "easy"
	ModeHard     Mode = "hard"
	ModeRandom   Mode = "random"
)

// ParseMode maps a query value to a Mode, defaulting to balanced.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeEasy, ModeHard, ModeRandom:
		return Mode(s)
	default:
		return ModeBalanced
	}
}

// AggregateStats summarizes a player's roster: averages over every owned
// character's combat power, defense, speed, intelligence, level and win
// rate.
type AggregateStats struct {
	Power        float64 `json:"power"`
	Defense      float64 `json:"defense"`
	Speed        float64 `json:"speed"`
	Intelligence float64 `json:"intelligence"`
	Level        float64 `json:"level"`
	WinRate      float64 `json:"win_rate"`
}

// Aggregate averages the roster's stats. The zero value is returned for an
// empty roster.
func Aggregate(characters []models.Character) AggregateStats {
	if len(characters) == 0 {
		return AggregateStats{}
	}
	var agg AggregateStats
	for i := range characters {
		c := &characters[i]
		agg.Power += battle.CombatPower(c.Animal)
		agg.Defense += float64(c.Animal.Defense)
		agg.Speed += float64(c.Animal.Speed)
		agg.Intelligence += float64(c.Animal.Intelligence)
		agg.Level += float64(c.Level())
		agg.WinRate += c.WinRate()
	}
	n := float64(len(characters))
	agg.Power /= n
	agg.Defense /= n
	agg.Speed /= n
	agg.Intelligence /= n
	agg.Level /= n
	agg.WinRate /= n
	return agg
}

// RankedCandidate is one proposed opponent with its fitness score.
type RankedCandidate struct {
	Character  models.Character `json:"character"`
	MatchScore float64          `json:"match_score"`
}

// Rank scores and orders a candidate pool against the requester's
// aggregate stats. Candidates at or below zero are dropped; an empty
// result is a valid answer, not an error. The sort is stable so ties keep
// input order, which makes balanced/easy/hard rankings deterministic for
// fixed inputs.
func Rank(requester AggregateStats, pool []models.Character, mode Mode, rng *rand.Rand) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(pool))
	for i := range pool {
		c := pool[i]
		power := battle.CombatPower(c.Animal)

		score := 100 -
			config.PowerDiffWeight*math.Abs(power-requester.Power) -
			config.LevelDiffWeight*math.Abs(float64(c.Level())-requester.Level) -
			config.WinRateDiffWeight*math.Abs(c.WinRate()-requester.WinRate)

		switch mode {
		case ModeEasy:
			if power < requester.Power {
				score += config.StrategyBonus
			} else {
				score += config.StrategyPenalty
			}
		case ModeHard:
			if power > requester.Power {
				score += config.StrategyBonus
			} else {
				score += config.StrategyPenalty
			}
		case ModeRandom:
			if rng != nil {
				score += rng.Float64()*2*config.RandomNoiseRange - config.RandomNoiseRange
			}
		}

		// Never-played accounts make dull opponents.
		if c.TotalBattles > 0 {
			score += config.HistoryBonus
		}

		if score > 0 {
			ranked = append(ranked, RankedCandidate{Character: c, MatchScore: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	return ranked
}

// Store is the slice of persistence the matchmaker needs.
type Store interface {
	GetCharactersByUser(userID string) ([]models.Character, error)
	GetOpponentPool(excludeUserID string, limit int) ([]models.Character, error)
	GetRecentOpponents(characterID string, n int) ([]string, error)
}

// Matchmaker proposes opponents for a player before any battle request.
type Matchmaker struct {
	Store Store
	Rand  *rand.Rand
}

// NewMatchmaker wires a matchmaker with a time-seeded random source.
func NewMatchmaker(store Store) *Matchmaker {
	return &Matchmaker{
		Store: store,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Propose ranks eligible opponents for the user. The pool already excludes
// inactive characters and suspended owners; this additionally drops each
// roster character's excludeRecent most recent opponents to avoid repeat
// pairings.
func (m *Matchmaker) Propose(userID string, mode Mode, excludeRecent int) ([]RankedCandidate, error) {
	roster, err := m.Store.GetCharactersByUser(userID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "failed to load roster: %v", err)
	}
	if len(roster) == 0 {
		return nil, apperr.New(apperr.NotFound, "you need an active character before matchmaking")
	}

	excluded := make(map[string]bool)
	for i := range roster {
		recent, err := m.Store.GetRecentOpponents(roster[i].ID, excludeRecent)
		if err != nil {
			return nil, apperr.New(apperr.Internal, "failed to load recent opponents: %v", err)
		}
		for _, id := range recent {
			excluded[id] = true
		}
	}

	pool, err := m.Store.GetOpponentPool(userID, 0)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "failed to load opponent pool: %v", err)
	}

	eligible := pool[:0]
	for _, c := range pool {
		if !excluded[c.ID] {
			eligible = append(eligible, c)
		}
	}

	return Rank(Aggregate(roster), eligible, mode, m.Rand), nil
}

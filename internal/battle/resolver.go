package battle

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/rating"
	"beastbattle/backend/internal/storage"
)

// Store is the slice of persistence the resolver needs.
type Store interface {
	GetUserByID(userID string) (*models.User, error)
	GetCharacterByID(characterID string) (*models.Character, error)
	ResetDailyQuota(characterID string, resetAt time.Time) error
	ApplyBattleOutcome(record *models.BattleRecord, attacker, defender storage.BattleUpdate) error
	GetBattlesForCharacter(characterID string, limit int) ([]models.BattleRecord, error)
	RefreshLeaderboardEntry(character *models.Character) error
	PushRecentOpponent(characterID, opponentID string, keep int) error
	PublishBattleEvent(event models.BattleEvent) error
}

// SideStats is one participant's post-battle snapshot in a Result.
type SideStats struct {
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	BaseScore   int     `json:"base_score"`
	EloScore    int     `json:"elo_score"`
	BaseDelta   int     `json:"base_delta"`
	EloDelta    int     `json:"elo_delta"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	CombatPower float64 `json:"combat_power"`
}

// Result is a fully resolved battle as returned to the initiator.
type Result struct {
	BattleID      string    `json:"battle_id"`
	WinnerID      string    `json:"winner_id"`
	AttackerScore float64   `json:"attacker_score"`
	DefenderScore float64   `json:"defender_score"`
	Judgment      string    `json:"judgment"`
	Reasoning     string    `json:"reasoning"`
	Attacker      SideStats `json:"attacker"`
	Defender      SideStats `json:"defender"`
}

// Resolver orchestrates one battle request through its gates: validation,
// quota, screening, scoring, persistence, cache invalidation. Any gate
// failure rejects with a tagged error and performs no mutation, except the
// screening gate whose warning accrual is an intended side effect.
type Resolver struct {
	Store  Store
	Screen *moderation.Screen
	Ledger *moderation.Ledger
	Cache  *HistoryCache
	// Rand feeds the score jitter; nil disables it for deterministic runs.
	Rand *rand.Rand
	// Now is injectable for quota-boundary tests.
	Now func() time.Time
	// RecentKeep bounds the remembered recent-opponent list.
	RecentKeep int
}

// NewResolver wires a resolver with production defaults.
func NewResolver(store Store, screen *moderation.Screen, ledger *moderation.Ledger, cache *HistoryCache) *Resolver {
	return &Resolver{
		Store:      store,
		Screen:     screen,
		Ledger:     ledger,
		Cache:      cache,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:        time.Now,
		RecentKeep: config.DefaultExcludeRecent,
	}
}

// Resolve runs one battle initiated by userID's character attackerID
// against defenderID.
func (r *Resolver) Resolve(userID, attackerID, defenderID string) (*Result, error) {
	user, err := r.Store.GetUserByID(userID)
	if err != nil {
		return nil, asNotFound(err, "user %s not found", userID)
	}
	if user.IsSuspended {
		return nil, apperr.New(apperr.Forbidden, "account is suspended: %s", user.SuspensionReason)
	}

	attacker, err := r.Store.GetCharacterByID(attackerID)
	if err != nil {
		return nil, asNotFound(err, "character %s not found", attackerID)
	}
	if !attacker.IsActive {
		return nil, apperr.New(apperr.NotFound, "character %s is no longer active", attackerID)
	}
	if attacker.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "character %s does not belong to you", attackerID)
	}

	defender, err := r.Store.GetCharacterByID(defenderID)
	if err != nil {
		return nil, asNotFound(err, "opponent %s not found", defenderID)
	}
	if !defender.IsActive {
		return nil, apperr.New(apperr.NotFound, "opponent %s is no longer active", defenderID)
	}
	if defender.UserID == userID && !defender.IsBot {
		return nil, apperr.New(apperr.Forbidden, "you cannot battle your own character")
	}

	// Lazy daily quota reset on the first battle after a UTC day rollover.
	now := r.Now()
	if !sameUTCDay(attacker.LastBattleResetAt, now) {
		if err := r.Store.ResetDailyQuota(attacker.ID, now); err != nil {
			return nil, apperr.New(apperr.Internal, "quota reset failed: %v", err)
		}
		attacker.ActiveBattlesToday = 0
		attacker.LastBattleResetAt = now
	}
	if !defender.IsBot && attacker.ActiveBattlesToday >= config.DailyBattleLimit {
		return nil, apperr.New(apperr.QuotaExceeded,
			"daily limit of %d battles reached; battles against bot opponents are exempt and still available",
			config.DailyBattleLimit)
	}

	screen := r.Screen.Check(attacker.BattleText, moderation.IntentBattleText)
	if !screen.IsClean {
		if _, _, lerr := r.Ledger.RecordViolation(userID, screen, attacker.BattleText); lerr != nil {
			log.Printf("ERROR: warning accrual failed for user %s: %v", userID, lerr)
		}
		return nil, apperr.Rejected("battle text rejected", screen.Violations)
	}

	verdict := Judge(attacker.BattleText, defender.BattleText, *attacker, *defender, r.Rand)

	winner, loser := attacker, defender
	if !verdict.AttackerWins {
		winner, loser = defender, attacker
	}

	winElo, loseElo := rating.EloDelta(winner.EloScore, loser.EloScore, config.EloKFactor)
	attackerElo, defenderElo := winElo, loseElo
	if !verdict.AttackerWins {
		attackerElo, defenderElo = loseElo, winElo
	}
	attackerBase := rating.BaseScoreDelta(verdict.AttackerWins)
	defenderBase := rating.BaseScoreDelta(!verdict.AttackerWins)

	record := &models.BattleRecord{
		AttackerID:         attacker.ID,
		DefenderID:         defender.ID,
		BattleType:         models.BattleTypeActive,
		WinnerID:           winner.ID,
		AttackerScoreDelta: attackerBase,
		DefenderScoreDelta: defenderBase,
		AttackerEloDelta:   attackerElo,
		DefenderEloDelta:   defenderElo,
		Judgment:           verdict.Judgment,
		Reasoning:          verdict.Reasoning,
	}

	err = r.Store.ApplyBattleOutcome(record,
		storage.BattleUpdate{
			CharacterID:    attacker.ID,
			BaseDelta:      attackerBase,
			EloDelta:       attackerElo,
			Won:            verdict.AttackerWins,
			CountsForQuota: !defender.IsBot,
		},
		storage.BattleUpdate{
			CharacterID: defender.ID,
			BaseDelta:   defenderBase,
			EloDelta:    defenderElo,
			Won:         !verdict.AttackerWins,
		})
	if err != nil {
		return nil, apperr.New(apperr.Internal, "failed to persist battle: %v", err)
	}

	// Mirror the committed increments locally for the response and the
	// leaderboard fast path.
	applySide(attacker, attackerBase, attackerElo, verdict.AttackerWins)
	applySide(defender, defenderBase, defenderElo, !verdict.AttackerWins)

	r.Cache.Invalidate(attacker.ID)
	r.Cache.Invalidate(defender.ID)

	if err := r.Store.RefreshLeaderboardEntry(attacker); err != nil {
		log.Printf("WARNING: leaderboard refresh failed for %s: %v", attacker.ID, err)
	}
	if err := r.Store.RefreshLeaderboardEntry(defender); err != nil {
		log.Printf("WARNING: leaderboard refresh failed for %s: %v", defender.ID, err)
	}
	if err := r.Store.PushRecentOpponent(attacker.ID, defender.ID, r.RecentKeep); err != nil {
		log.Printf("WARNING: recent-opponent tracking failed: %v", err)
	}

	event := models.BattleEvent{
		BattleID:      record.ID,
		AttackerID:    attacker.ID,
		AttackerName:  attacker.Name,
		DefenderID:    defender.ID,
		DefenderName:  defender.Name,
		WinnerID:      winner.ID,
		AttackerScore: verdict.AttackerScore,
		DefenderScore: verdict.DefenderScore,
		Judgment:      verdict.Judgment,
		ResolvedAt:    now,
	}
	if err := r.Store.PublishBattleEvent(event); err != nil {
		log.Printf("WARNING: battle feed publish failed: %v", err)
	}

	return &Result{
		BattleID:      record.ID,
		WinnerID:      winner.ID,
		AttackerScore: verdict.AttackerScore,
		DefenderScore: verdict.DefenderScore,
		Judgment:      verdict.Judgment,
		Reasoning:     verdict.Reasoning,
		Attacker:      sideStats(attacker, attackerBase, attackerElo),
		Defender:      sideStats(defender, defenderBase, defenderElo),
	}, nil
}

// History serves a character's battle records through the cache. The
// caller must own the character they are asking about.
func (r *Resolver) History(userID, characterID string, limit int) ([]models.BattleRecord, error) {
	character, err := r.Store.GetCharacterByID(characterID)
	if err != nil {
		return nil, asNotFound(err, "character %s not found", characterID)
	}
	if character.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "character %s does not belong to you", characterID)
	}

	if records, ok := r.Cache.Get(characterID, limit); ok {
		return records, nil
	}

	records, err := r.Store.GetBattlesForCharacter(characterID, limit)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "failed to load battle history: %v", err)
	}
	r.Cache.Put(characterID, limit, records)
	return records, nil
}

func applySide(c *models.Character, baseDelta, eloDelta int, won bool) {
	c.BaseScore = rating.ApplyBase(c.BaseScore, baseDelta)
	c.EloScore = rating.ApplyElo(c.EloScore, eloDelta)
	c.TotalBattles++
	if won {
		c.Wins++
	} else {
		c.Losses++
	}
}

func sideStats(c *models.Character, baseDelta, eloDelta int) SideStats {
	return SideStats{
		CharacterID: c.ID,
		Name:        c.Name,
		BaseScore:   c.BaseScore,
		EloScore:    c.EloScore,
		BaseDelta:   baseDelta,
		EloDelta:    eloDelta,
		Wins:        c.Wins,
		Losses:      c.Losses,
		CombatPower: CombatPower(c.Animal),
	}
}

func asNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.NotFound, format, args...)
	}
	return apperr.New(apperr.Internal, "storage failure: %v", err)
}

// sameUTCDay reports whether both instants fall on the same UTC calendar
// day. The quota boundary is a UTC day; the reset is idempotent because a
// second call on the same day compares equal.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

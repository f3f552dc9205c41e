package config

import "time"

const (
	// Scores
	InitialBaseScore = 1000
	MinBaseScore     = 0
	InitialEloScore  = 1500
	MinEloScore      = 1000
	EloKFactor       = 32
	WinBaseDelta     = 10
	LossBaseDelta    = -5

	// Outcome weighting
	TextScoreWeight   = 0.8
	CombatPowerWeight = 0.2
	MaxCombatStatSum  = 400

	// Quota
	DailyBattleLimit = 10

	// Moderation
	SuspensionThreshold = 3
	MinBattleTextLen    = 10
	MaxBattleTextLen    = 200
	MaxCharacterNameLen = 100
	MaxSymbolRatio      = 0.2

	// Characters
	MaxActiveCharactersPerUser = 3

	// Matchmaking
	PowerDiffWeight      = 0.1
	LevelDiffWeight      = 5.0
	WinRateDiffWeight    = 0.3
	StrategyBonus        = 20.0
	StrategyPenalty      = -30.0
	RandomNoiseRange     = 25.0
	HistoryBonus         = 10.0
	DefaultExcludeRecent = 5

	// History cache
	HistoryCacheCapacity = 256

	// Auth
	TokenTTL = 72 * time.Hour
)

// DefaultDenylist is the built-in set of disallowed terms, matched
// case-insensitively as substrings. Extended at runtime via DENYLIST_EXTRA.
var DefaultDenylist = []string{
	"stupid",
	"idiot",
	"hate you",
	"kill yourself",
	"dumb",
	"loser",
	"shut up",
}

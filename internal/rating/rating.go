// Package rating holds the pure rating math: Elo deltas via the logistic
// expected-score formula and the bounded base-score deltas. No state, no
// side effects.
package rating

import (
	"math"

	"beastbattle/backend/internal/config"
)

// ExpectedScore is the probability of self beating other under the
// standard logistic Elo model.
func ExpectedScore(self, other int) float64 {
	return 1 / (1 + math.Pow(10, float64(other-self)/400))
}

// EloDelta computes both sides' Elo changes for a decided battle. Each
// delta is rounded from its own expected value, so the winner's gain and
// the loser's loss are not exact negatives of each other; that asymmetry
// is part of the model and is relied on by the record schema.
func EloDelta(winnerRating, loserRating, kFactor int) (winnerDelta, loserDelta int) {
	k := float64(kFactor)
	winnerDelta = int(math.Round(k * (1 - ExpectedScore(winnerRating, loserRating))))
	loserDelta = int(math.Round(k * (0 - ExpectedScore(loserRating, winnerRating))))
	return winnerDelta, loserDelta
}

// BaseScoreDelta is the flat win/loss point change for the base score.
func BaseScoreDelta(isWinner bool) int {
	if isWinner {
		return config.WinBaseDelta
	}
	return config.LossBaseDelta
}

// ApplyBase adds a delta to a base score, clamped at the zero floor.
func ApplyBase(score, delta int) int {
	if score+delta < config.MinBaseScore {
		return config.MinBaseScore
	}
	return score + delta
}

// ApplyElo adds a delta to an Elo score, clamped at the 1000 floor.
func ApplyElo(score, delta int) int {
	if score+delta < config.MinEloScore {
		return config.MinEloScore
	}
	return score + delta
}

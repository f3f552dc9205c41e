// Package battle resolves duels: it scores both sides, picks a winner,
// applies rating changes and writes the immutable battle record.
package battle

import (
	"fmt"
	"math/rand"

	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
)

// TextScore maps battle-text length to a bounded score. Monotonic in
// length and fully deterministic: longer effort earns more, capped at 95
// so combat stats always matter.
func TextScore(text string) float64 {
	score := 25 + 0.5*float64(len([]rune(text)))
	if score > 95 {
		return 95
	}
	return score
}

// CombatPower normalizes an animal's combat stats to [0,100].
func CombatPower(animal models.Animal) float64 {
	sum := animal.Attack + animal.Strength + animal.Speed + animal.Energy
	power := float64(sum) / config.MaxCombatStatSum * 100
	if power < 0 {
		return 0
	}
	if power > 100 {
		return 100
	}
	return power
}

// SideScore combines text effort and combat power for one side. The rand
// source is injectable so tests can fix the draw; nil means no jitter.
// Production passes a seeded source, making individual battles
// intentionally non-reproducible while every floor invariant still holds
// for any draw.
func SideScore(text string, animal models.Animal, rng *rand.Rand) float64 {
	score := TextScore(text)*config.TextScoreWeight + CombatPower(animal)*config.CombatPowerWeight
	if rng != nil {
		score += rng.Float64()*6 - 3
	}
	return score
}

// Verdict is the outcome of judging two sides' texts and stats.
type Verdict struct {
	AttackerWins  bool
	AttackerScore float64
	DefenderScore float64
	Judgment      string
	Reasoning     string
}

// Judge scores both sides and decides the winner. The attacker wins exact
// ties; that rule is fixed and tests pin it.
func Judge(attackerText, defenderText string, attacker, defender models.Character, rng *rand.Rand) Verdict {
	aScore := SideScore(attackerText, attacker.Animal, rng)
	dScore := SideScore(defenderText, defender.Animal, rng)

	v := Verdict{
		AttackerWins:  aScore >= dScore,
		AttackerScore: aScore,
		DefenderScore: dScore,
	}

	winner, loser := attacker, defender
	if !v.AttackerWins {
		winner, loser = defender, attacker
	}

	v.Judgment = fmt.Sprintf("%s the %s defeats %s the %s!",
		winner.Name, winner.Animal.Name, loser.Name, loser.Animal.Name)
	v.Reasoning = fmt.Sprintf(
		"%s scored %.1f (battle cry %.1f, combat power %.1f) against %.1f for %s.",
		winner.Name,
		maxScore(v),
		TextScore(winnerText(v, attackerText, defenderText)),
		CombatPower(winner.Animal),
		minScore(v),
		loser.Name,
	)
	return v
}

func maxScore(v Verdict) float64 {
	if v.AttackerWins {
		return v.AttackerScore
	}
	return v.DefenderScore
}

func minScore(v Verdict) float64 {
	if v.AttackerWins {
		return v.DefenderScore
	}
	return v.AttackerScore
}

func winnerText(v Verdict, attackerText, defenderText string) string {
	if v.AttackerWins {
		return attackerText
	}
	return defenderText
}

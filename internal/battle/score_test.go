package battle_test

import (
	"math/rand"
	"strings"
	"testing"

	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTextScore_MonotonicAndBounded(t *testing.T) {
	previous := -1.0
	for length := 0; length <= 250; length += 10 {
		score := battle.TextScore(strings.Repeat("a", length))
		assert.GreaterOrEqual(t, score, previous, "score must not decrease with length")
		assert.LessOrEqual(t, score, 95.0)
		previous = score
	}
}

func TestCombatPower_Normalization(t *testing.T) {
	assert.Equal(t, 100.0, battle.CombatPower(models.Animal{Attack: 100, Strength: 100, Speed: 100, Energy: 100}))
	assert.Equal(t, 50.0, battle.CombatPower(models.Animal{Attack: 50, Strength: 50, Speed: 50, Energy: 50}))
	assert.Equal(t, 0.0, battle.CombatPower(models.Animal{}))
}

func TestCombatPower_ClampsAboveHundred(t *testing.T) {
	overpowered := models.Animal{Attack: 200, Strength: 200, Speed: 200, Energy: 200}
	assert.Equal(t, 100.0, battle.CombatPower(overpowered))
}

func TestSideScore_NilSourceIsDeterministic(t *testing.T) {
	animal := models.Animal{Attack: 80, Strength: 70, Speed: 60, Energy: 50}
	first := battle.SideScore("a worthy battle cry", animal, nil)
	second := battle.SideScore("a worthy battle cry", animal, nil)
	assert.Equal(t, first, second)
}

func TestSideScore_SeededSourceIsReproducible(t *testing.T) {
	animal := models.Animal{Attack: 80, Strength: 70, Speed: 60, Energy: 50}
	first := battle.SideScore("a worthy battle cry", animal, rand.New(rand.NewSource(7)))
	second := battle.SideScore("a worthy battle cry", animal, rand.New(rand.NewSource(7)))
	assert.Equal(t, first, second)
}

func testCharacter(name, animalName string, stats int) models.Character {
	return models.Character{
		Name: name,
		Animal: models.Animal{
			Name:     animalName,
			Attack:   stats,
			Strength: stats,
			Speed:    stats,
			Energy:   stats,
		},
	}
}

func TestJudge_AttackerWinsExactTies(t *testing.T) {
	attacker := testCharacter("Rex", "Lion", 70)
	defender := testCharacter("Blue", "Eagle", 70)
	text := "we fight with honor and courage"

	verdict := battle.Judge(text, text, attacker, defender, nil)

	assert.True(t, verdict.AttackerWins)
	assert.Equal(t, verdict.AttackerScore, verdict.DefenderScore)
	assert.Contains(t, verdict.Judgment, "Rex")
	assert.Contains(t, verdict.Judgment, "defeats")
}

func TestJudge_LongerTextWins(t *testing.T) {
	attacker := testCharacter("Rex", "Lion", 70)
	defender := testCharacter("Blue", "Eagle", 70)

	verdict := battle.Judge(
		"a long and wonderfully imaginative battle cry full of heart",
		"a short cry",
		attacker, defender, nil)

	assert.True(t, verdict.AttackerWins)
	assert.Greater(t, verdict.AttackerScore, verdict.DefenderScore)
}

func TestJudge_StrongerAnimalBreaksEqualText(t *testing.T) {
	attacker := testCharacter("Rex", "Tortoise", 40)
	defender := testCharacter("Blue", "Lion", 90)
	text := "we fight with honor and courage"

	verdict := battle.Judge(text, text, attacker, defender, nil)

	assert.False(t, verdict.AttackerWins)
	assert.Contains(t, verdict.Judgment, "Blue")
}

package moderation_test

import (
	"strings"
	"testing"

	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/moderation"

	"github.com/stretchr/testify/assert"
)

func newScreen() *moderation.Screen {
	return moderation.NewScreen(config.DefaultDenylist)
}

func TestScreenBattleText_TooShort(t *testing.T) {
	result := newScreen().Check("hi", moderation.IntentBattleText)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryTextViolation, result.Category)
	assert.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "at least 10 characters")
}

func TestScreenBattleText_TooLong(t *testing.T) {
	result := newScreen().Check(strings.Repeat("a", 201), moderation.IntentBattleText)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryTextViolation, result.Category)
}

func TestScreenBattleText_Clean(t *testing.T) {
	result := newScreen().Check("My mighty lion roars across the savanna!", moderation.IntentBattleText)

	assert.True(t, result.IsClean)
	assert.Equal(t, moderation.CategoryClean, result.Category)
	assert.Empty(t, result.Violations)
}

func TestScreenBattleText_DenylistIsCaseInsensitive(t *testing.T) {
	result := newScreen().Check("You are SO StUpId and slow", moderation.IntentBattleText)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryProfanity, result.Category)
	assert.Contains(t, result.Violations[0], "stupid")
}

func TestScreenBattleText_SymbolAbuse(t *testing.T) {
	result := newScreen().Check("wow!!!!! ####### $$$$$ yes", moderation.IntentBattleText)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategorySymbolAbuse, result.Category)
}

func TestScreenBattleText_AllViolationsListed(t *testing.T) {
	// Too short AND contains a denylisted term: both must be reported, the
	// category comes from the first rule that fired.
	result := newScreen().Check("stupid", moderation.IntentBattleText)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryTextViolation, result.Category)
	assert.Len(t, result.Violations, 2)
}

func TestScreenCharacterName_Empty(t *testing.T) {
	result := newScreen().Check("", moderation.IntentCharacterName)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryNameViolation, result.Category)
}

func TestScreenCharacterName_TooLong(t *testing.T) {
	result := newScreen().Check(strings.Repeat("x", 101), moderation.IntentCharacterName)

	assert.False(t, result.IsClean)
	assert.Equal(t, moderation.CategoryNameViolation, result.Category)
}

func TestScreenCharacterName_PunctuationAllowed(t *testing.T) {
	// The structural-noise rule is skipped for names.
	result := newScreen().Check("Mr. T!", moderation.IntentCharacterName)

	assert.True(t, result.IsClean)
}

func TestScreenIsDeterministic(t *testing.T) {
	screen := newScreen()
	first := screen.Check("hi", moderation.IntentBattleText)
	second := screen.Check("hi", moderation.IntentBattleText)

	assert.Equal(t, first, second)
}

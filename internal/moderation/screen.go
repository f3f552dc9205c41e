// Package moderation screens player-submitted text and escalates repeated
// violations into account suspension.
package moderation

import (
	"fmt"
	"strings"
	"unicode"

	"beastbattle/backend/internal/config"
)

// Intent says what a submission is going to be used for; the rules differ
// between the two.
type Intent int

const (
	IntentCharacterName Intent = iota
	IntentBattleText
)

// ViolationCategory tags the kind of rule a submission broke. New
// categories extend this enum rather than a string convention so switches
// stay exhaustive.
type ViolationCategory int

const (
	CategoryClean ViolationCategory = iota
	CategoryNameViolation
	CategoryTextViolation
	CategoryProfanity
	CategorySymbolAbuse
)

func (c ViolationCategory) String() string {
	switch c {
	case CategoryClean:
		return "clean"
	case CategoryNameViolation:
		return "name_violation"
	case CategoryTextViolation:
		return "text_violation"
	case CategoryProfanity:
		return "profanity"
	case CategorySymbolAbuse:
		return "special_character_abuse"
	default:
		return "unknown"
	}
}

// ScreenResult is the outcome of screening one submission. Category is set
// by the first rule that matched; Violations lists every rule that did.
type ScreenResult struct {
	IsClean    bool
	Violations []string
	Category   ViolationCategory
}

// Screen classifies free text against the length, denylist and structural
// rules. Pure and deterministic: safe to call before any state mutation so
// callers can reject without persisting anything.
type Screen struct {
	denylist []string
}

// NewScreen builds a screen over the given denylist terms. Terms are
// matched case-insensitively as substrings.
func NewScreen(denylist []string) *Screen {
	lowered := make([]string, 0, len(denylist))
	for _, term := range denylist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			lowered = append(lowered, term)
		}
	}
	return &Screen{denylist: lowered}
}

// Check runs all rules in order and reports every violation. The reported
// category comes from the first rule that fired.
func (s *Screen) Check(text string, intent Intent) ScreenResult {
	result := ScreenResult{IsClean: true, Category: CategoryClean}

	addViolation := func(category ViolationCategory, msg string) {
		result.IsClean = false
		result.Violations = append(result.Violations, msg)
		if result.Category == CategoryClean {
			result.Category = category
		}
	}

	length := len([]rune(text))
	switch intent {
	case IntentCharacterName:
		if length == 0 {
			addViolation(CategoryNameViolation, "character name must not be empty")
		} else if length > config.MaxCharacterNameLen {
			addViolation(CategoryNameViolation,
				fmt.Sprintf("character name must be at most %d characters", config.MaxCharacterNameLen))
		}
	case IntentBattleText:
		if length < config.MinBattleTextLen {
			addViolation(CategoryTextViolation,
				fmt.Sprintf("battle text must be at least %d characters", config.MinBattleTextLen))
		} else if length > config.MaxBattleTextLen {
			addViolation(CategoryTextViolation,
				fmt.Sprintf("battle text must be at most %d characters", config.MaxBattleTextLen))
		}
	}

	lowered := strings.ToLower(text)
	for _, term := range s.denylist {
		if strings.Contains(lowered, term) {
			addViolation(CategoryProfanity, fmt.Sprintf("contains disallowed term %q", term))
		}
	}

	// Structural noise only applies to battle text; short names with
	// punctuation (e.g. "Mr. Fox") are fine.
	if intent == IntentBattleText && length > 0 {
		if symbolRatio(text) > config.MaxSymbolRatio {
			addViolation(CategorySymbolAbuse, "too many punctuation or symbol characters")
		}
	}

	return result
}

func symbolRatio(text string) float64 {
	runes := []rune(text)
	symbols := 0
	for _, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			symbols++
		}
	}
	return float64(symbols) / float64(len(runes))
}

package handler

import (
	"math"
	"net/http"
	"strconv"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createBattleRequest struct {
	AttackerID string `json:"attacker_id" binding:"required"`
	DefenderID string `json:"defender_id" binding:"required"`
}

// CreateBattle resolves one battle initiated by the caller.
func (h *Handler) CreateBattle(c *gin.Context) {
	var req createBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "attacker_id and defender_id are required")
		return
	}

	result, err := h.Resolver.Resolve(currentUserID(c), req.AttackerID, req.DefenderID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"battle_id": result.BattleID,
		"winner":    result.WinnerID,
		"scores": gin.H{
			"attacker": result.AttackerScore,
			"defender": result.DefenderScore,
		},
		"judgment":  result.Judgment,
		"reasoning": result.Reasoning,
		"updated_stats": gin.H{
			"attacker": result.Attacker,
			"defender": result.Defender,
		},
		"combat_stats": gin.H{
			"attacker": result.Attacker.CombatPower,
			"defender": result.Defender.CombatPower,
		},
	})
}

// ListBattles returns a character's battle history, newest first, served
// through the history cache.
func (h *Handler) ListBattles(c *gin.Context) {
	characterID := c.Query("characterId")
	if characterID == "" {
		writeValidation(c, "characterId is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.Resolver.History(currentUserID(c), characterID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battles": records})
}

type judgeRequest struct {
	AttackerText      string `json:"attacker_text" binding:"required"`
	DefenderText      string `json:"defender_text" binding:"required"`
	AttackerCharacter string `json:"attacker_character" binding:"required"`
	DefenderCharacter string `json:"defender_character" binding:"required"`
}

// JudgeBattle is the stateless what-if variant: it scores the submitted
// texts against the named characters without touching ratings, quota or
// history. Moderation still applies, and a rejection still accrues a
// warning for the caller — the texts are the caller's submission.
// Scoring here uses no jitter so previews are reproducible.
func (h *Handler) JudgeBattle(c *gin.Context) {
	var req judgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "attacker_text, defender_text, attacker_character and defender_character are required")
		return
	}

	for _, text := range []string{req.AttackerText, req.DefenderText} {
		screen := h.Screen.Check(text, moderation.IntentBattleText)
		if !screen.IsClean {
			h.recordViolation(c, screen, text)
			writeError(c, apperr.Rejected("battle text rejected", screen.Violations))
			return
		}
	}

	attacker, err := h.Storage.GetCharacterByID(req.AttackerCharacter)
	if err != nil {
		writeError(c, notFoundOrInternal(err, "attacker character not found"))
		return
	}
	defender, err := h.Storage.GetCharacterByID(req.DefenderCharacter)
	if err != nil {
		writeError(c, notFoundOrInternal(err, "defender character not found"))
		return
	}

	verdict := battle.Judge(req.AttackerText, req.DefenderText, *attacker, *defender, nil)

	winnerID := attacker.ID
	if !verdict.AttackerWins {
		winnerID = defender.ID
	}

	lang := c.DefaultQuery("lang", "en")
	gap := math.Abs(verdict.AttackerScore - verdict.DefenderScore)

	c.JSON(http.StatusOK, gin.H{
		"winner": winnerID,
		"scores": gin.H{
			"attacker": verdict.AttackerScore,
			"defender": verdict.DefenderScore,
		},
		"judgment":      verdict.Judgment,
		"reasoning":     verdict.Reasoning,
		"encouragement": h.Catalog.Encouragement(lang, verdict.AttackerWins, gap),
	})
}

func (h *Handler) recordViolation(c *gin.Context, screen moderation.ScreenResult, content string) {
	if _, _, err := h.Ledger.RecordViolation(currentUserID(c), screen, content); err != nil {
		// Accrual failure must not mask the rejection itself.
		_ = c.Error(err)
	}
}

func notFoundOrInternal(err error, message string) error {
	if err == storage.ErrNotFound {
		return apperr.New(apperr.NotFound, "%s", message)
	}
	return apperr.New(apperr.Internal, "storage failure: %v", err)
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/moderation"

	"github.com/gin-gonic/gin"
)

type createCharacterRequest struct {
	AnimalID      uint   `json:"animal_id" binding:"required"`
	CharacterName string `json:"character_name" binding:"required"`
	BattleText    string `json:"battle_text" binding:"required"`
}

// CreateCharacter screens the name and battle text, then creates the
// character. A rejection accrues a warning before the 400 goes out.
func (h *Handler) CreateCharacter(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "animal_id, character_name and battle_text are required")
		return
	}

	userID := currentUserID(c)
	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		writeError(c, notFoundOrInternal(err, "user not found"))
		return
	}
	if user.IsSuspended {
		writeError(c, apperr.New(apperr.Forbidden, "account is suspended: %s", user.SuspensionReason))
		return
	}

	count, err := h.Storage.CountActiveCharacters(userID)
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "storage failure: %v", err))
		return
	}
	if count >= config.MaxActiveCharactersPerUser {
		writeValidation(c, fmt.Sprintf("you already own the maximum of %d active characters", config.MaxActiveCharactersPerUser))
		return
	}

	if screen := h.Screen.Check(req.CharacterName, moderation.IntentCharacterName); !screen.IsClean {
		h.recordViolation(c, screen, req.CharacterName)
		writeError(c, apperr.Rejected(screen.Violations[0], screen.Violations))
		return
	}
	if screen := h.Screen.Check(req.BattleText, moderation.IntentBattleText); !screen.IsClean {
		h.recordViolation(c, screen, req.BattleText)
		writeError(c, apperr.Rejected(screen.Violations[0], screen.Violations))
		return
	}

	animal, err := h.Storage.GetAnimalByID(req.AnimalID)
	if err != nil {
		writeError(c, notFoundOrInternal(err, "animal archetype not found"))
		return
	}

	character := &models.Character{
		UserID:            userID,
		AnimalID:          animal.ID,
		Animal:            *animal,
		Name:              req.CharacterName,
		BattleText:        req.BattleText,
		BaseScore:         config.InitialBaseScore,
		EloScore:          config.InitialEloScore,
		LastBattleResetAt: time.Now(),
		IsActive:          true,
	}
	if err := h.Storage.CreateCharacter(character); err != nil {
		writeError(c, apperr.New(apperr.Internal, "failed to create character"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"character": character})
}

// ListCharacters returns the caller's active roster.
func (h *Handler) ListCharacters(c *gin.Context) {
	characters, err := h.Storage.GetCharactersByUser(currentUserID(c))
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "storage failure: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

// ListAnimals returns the playable archetypes.
func (h *Handler) ListAnimals(c *gin.Context) {
	animals, err := h.Storage.ListAnimals()
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "storage failure: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"animals": animals})
}

// Leaderboard serves the derived ranking, base score first, elo second.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.Storage.GetLeaderboard(limit)
	if err != nil {
		writeError(c, apperr.New(apperr.Internal, "storage failure: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

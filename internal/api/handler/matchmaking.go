package handler

import (
	"net/http"
	"strconv"

	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/matchmaking"

	"github.com/gin-gonic/gin"
)

// Matchmaking ranks eligible opponents for the caller. An empty match list
// is a normal answer, never an error.
func (h *Handler) Matchmaking(c *gin.Context) {
	mode := matchmaking.ParseMode(c.DefaultQuery("mode", string(matchmaking.ModeBalanced)))

	excludeRecent := config.DefaultExcludeRecent
	if raw := c.Query("excludeRecent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeValidation(c, "excludeRecent must be a non-negative integer")
			return
		}
		excludeRecent = n
	}

	matches, err := h.Matchmaker.Propose(currentUserID(c), mode, excludeRecent)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

package handler

import (
	"net/http"

	"beastbattle/backend/internal/battlehub"
	"beastbattle/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectator feed is public read-only data; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeBattleFeed upgrades the connection and registers the spectator on
// the battle feed.
func (h *Handler) ServeBattleFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &battlehub.SpectatorClient{
		ID:   uuid.New().String(),
		Conn: conn,
		Hub:  h.Hub,
		Send: make(chan models.BattleEvent, 64),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}

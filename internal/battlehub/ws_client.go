package battlehub

import (
	"encoding/json"
	"log"
	"time"

	"beastbattle/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SpectatorClient implements Client over a gorilla websocket connection.
type SpectatorClient struct {
	ID   string
	Conn *websocket.Conn
	Hub  *FeedService
	Send chan models.BattleEvent
}

func (c *SpectatorClient) GetID() string                             { return c.ID }
func (c *SpectatorClient) GetSendChannel() chan<- models.BattleEvent { return c.Send }

// Run starts the write pump and a minimal read loop that only watches for
// the peer closing the connection.
func (c *SpectatorClient) Run() {
	go c.writePump()
	go c.readUntilClosed()
}

// Close closes the Send channel, which stops the write pump.
func (c *SpectatorClient) Close() {
	close(c.Send)
}

// readUntilClosed discards anything the peer sends; the feed is one-way.
// Its job is to notice disconnects and service pong frames.
func (c *SpectatorClient) readUntilClosed() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("spectator %s read error: %v", c.ID, err)
			}
			return
		}
	}
}

func (c *SpectatorClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: failed to encode battle event for %s: %v", c.ID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

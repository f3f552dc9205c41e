package battlehub

import "beastbattle/backend/internal/models"

// Client is one spectator connection on the battle feed. The feed is
// broadcast-only: clients receive resolved-battle events and send nothing
// back, so the interface has no inbound path.
type Client interface {
	// GetID returns the connection's unique identifier.
	GetID() string

	// GetSendChannel returns the channel the hub pushes events into for
	// this client. Send-only from the hub's side.
	GetSendChannel() chan<- models.BattleEvent

	// Run starts the client's pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}

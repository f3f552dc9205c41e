// Package battlehub fans resolved-battle events out to websocket
// spectators. Events arrive over Redis pub/sub so every instance of the
// service shares one feed.
package battlehub

import (
	"encoding/json"
	"log"

	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/storage"
)

// FeedService owns the spectator client set. The client map is touched
// only by the Run goroutine; registration and events flow in over
// channels.
type FeedService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.BattleEvent

	Storage *storage.Service
}

// NewFeedService creates the hub.
func NewFeedService(s *storage.Service) *FeedService {
	return &FeedService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.BattleEvent, 64),
		Storage:      s,
	}
}

// StartPubSubListener subscribes to the shared battle-event channel and
// forwards decoded events into the broadcast channel.
func (f *FeedService) StartPubSubListener() {
	if f.Storage == nil || f.Storage.Redis == nil {
		return
	}
	go func() {
		pubsub := f.Storage.SubscribeBattleFeed()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.BattleEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: failed to decode battle event: %v", err)
				continue
			}
			f.BroadcastCh <- event
		}
	}()
}

// Run is the hub's main loop. Slow clients whose send buffer is full are
// dropped rather than allowed to stall the feed.
func (f *FeedService) Run() {
	f.StartPubSubListener()

	for {
		select {
		case client := <-f.RegisterCh:
			f.Clients[client.GetID()] = client
			log.Printf("Spectator %s joined the battle feed (%d total)", client.GetID(), len(f.Clients))

		case client := <-f.UnregisterCh:
			if _, ok := f.Clients[client.GetID()]; ok {
				delete(f.Clients, client.GetID())
				client.Close()
				log.Printf("Spectator %s left the battle feed", client.GetID())
			}

		case event := <-f.BroadcastCh:
			for id, client := range f.Clients {
				select {
				case client.GetSendChannel() <- event:
				default:
					delete(f.Clients, id)
					client.Close()
					log.Printf("Dropped slow spectator %s", id)
				}
			}
		}
	}
}

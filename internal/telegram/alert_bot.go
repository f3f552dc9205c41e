// Package telegram runs the optional admin alert bot: it pushes automatic
// suspension notices to a configured admin chat and answers a /stats
// command with headline counts.
package telegram

import (
	"fmt"
	"log"

	"beastbattle/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AlertBot notifies moderators about automatic account actions. It
// implements moderation.Notifier.
type AlertBot struct {
	BotAPI      *tgbotapi.BotAPI
	Storage     *storage.Service
	AdminChatID int64
}

// NewAlertBot authorizes the bot. AdminChatID is where alerts go.
func NewAlertBot(token string, adminChatID int64, s *storage.Service) (*AlertBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Admin alert bot authorized on account %s", bot.Self.UserName)

	return &AlertBot{
		BotAPI:      bot,
		Storage:     s,
		AdminChatID: adminChatID,
	}, nil
}

// NotifySuspension posts an auto-suspension notice. Best effort; a failed
// delivery is logged, never surfaced to the player flow.
func (b *AlertBot) NotifySuspension(userID, reason string) {
	text := fmt.Sprintf("⚠️ Auto-suspension\nUser: %s\n%s", userID, reason)
	if _, err := b.BotAPI.Send(tgbotapi.NewMessage(b.AdminChatID, text)); err != nil {
		log.Printf("ERROR: failed to deliver suspension alert: %v", err)
	}
}

// Run polls for updates and serves the /stats command from the admin chat.
func (b *AlertBot) Run() {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	for update := range b.BotAPI.GetUpdatesChan(updateConfig) {
		msg := update.Message
		if msg == nil || msg.Chat.ID != b.AdminChatID {
			continue
		}
		if msg.Command() != "stats" {
			continue
		}

		users, err := b.Storage.CountUsers()
		if err != nil {
			log.Printf("ERROR: stats query failed: %v", err)
			continue
		}
		battles, err := b.Storage.CountBattles()
		if err != nil {
			log.Printf("ERROR: stats query failed: %v", err)
			continue
		}

		reply := fmt.Sprintf("Players: %d\nBattles resolved: %d", users, battles)
		if _, err := b.BotAPI.Send(tgbotapi.NewMessage(b.AdminChatID, reply)); err != nil {
			log.Printf("ERROR: failed to send stats reply: %v", err)
		}
	}
}

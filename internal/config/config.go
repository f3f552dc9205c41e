package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig holds the runtime settings read from the environment.
type AppConfig struct {
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	ListenAddr    string
	TelegramToken string // optional, admin alert bot
	AdminChatID   int64
	DenylistExtra []string
}

// Load reads the configuration from environment variables. Call godotenv.Load
// first if a .env file should be honored.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		PostgresDSN: fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			envOr("DB_HOST", "localhost"),
			envOr("DB_USER", "user"),
			envOr("DB_PASSWORD", "password"),
			envOr("DB_NAME", "beastbattledb"),
			envOr("DB_PORT", "5432"),
		),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if extra := os.Getenv("DENYLIST_EXTRA"); extra != "" {
		for _, term := range strings.Split(extra, ",") {
			term = strings.TrimSpace(term)
			if term != "" {
				cfg.DenylistExtra = append(cfg.DenylistExtra, term)
			}
		}
	}

	if chatID := os.Getenv("ADMIN_CHAT_ID"); chatID != "" {
		if _, err := fmt.Sscanf(chatID, "%d", &cfg.AdminChatID); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
		}
	}

	return cfg, nil
}

// Denylist returns the built-in terms plus any configured extras.
func (c *AppConfig) Denylist() []string {
	return append(append([]string{}, DefaultDenylist...), c.DenylistExtra...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

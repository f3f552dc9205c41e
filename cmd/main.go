package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"beastbattle/backend/internal/api/handler"
	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/battlehub"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/localization"
	"beastbattle/backend/internal/matchmaking"
	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/storage"
	"beastbattle/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.AppConfig) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Database and Redis connections established.")
	return db, rdb
}

// seedAnimals loads the playable archetype roster.
func seedAnimals(s *storage.Service) {
	animals := []models.Animal{
		{Name: "Lion", Attack: 90, Strength: 85, Speed: 70, Energy: 75, Defense: 65, Intelligence: 60},
		{Name: "Eagle", Attack: 75, Strength: 55, Speed: 95, Energy: 80, Defense: 45, Intelligence: 70},
		{Name: "Tortoise", Attack: 40, Strength: 70, Speed: 20, Energy: 60, Defense: 95, Intelligence: 80},
		{Name: "Dolphin", Attack: 60, Strength: 60, Speed: 85, Energy: 85, Defense: 50, Intelligence: 95},
		{Name: "Wolf", Attack: 80, Strength: 70, Speed: 80, Energy: 70, Defense: 60, Intelligence: 75},
		{Name: "Panda", Attack: 55, Strength: 80, Speed: 40, Energy: 65, Defense: 75, Intelligence: 65},
	}
	if err := s.SeedAnimals(animals); err != nil {
		log.Fatalf("Failed to seed animals: %v", err)
	}
}

// seedBots makes sure a practice bot exists for every archetype. Bot
// opponents are exempt from the daily battle quota.
func seedBots(s *storage.Service) {
	bot, err := s.GetUserByDisplayName("Practice Bots")
	if err == storage.ErrNotFound {
		bot = &models.User{DisplayName: "Practice Bots"}
		if err := s.CreateUser(bot); err != nil {
			log.Fatalf("Failed to create bot user: %v", err)
		}
	} else if err != nil {
		log.Fatalf("Failed to look up bot user: %v", err)
	}

	existing, err := s.GetCharactersByUser(bot.ID)
	if err != nil {
		log.Fatalf("Failed to list bot characters: %v", err)
	}
	if len(existing) > 0 {
		return
	}

	animals, err := s.ListAnimals()
	if err != nil {
		log.Fatalf("Failed to list animals: %v", err)
	}
	for _, animal := range animals {
		character := &models.Character{
			UserID:            bot.ID,
			AnimalID:          animal.ID,
			Name:              "Trainer " + animal.Name,
			BattleText:        "I am a friendly practice partner, ready whenever you are!",
			BaseScore:         config.InitialBaseScore,
			EloScore:          config.InitialEloScore,
			LastBattleResetAt: time.Now(),
			IsBot:             true,
			IsActive:          true,
		}
		if err := s.CreateCharacter(character); err != nil {
			log.Fatalf("Failed to seed bot character: %v", err)
		}
	}
	log.Printf("Seeded %d practice bots.", len(animals))
}

func main() {
	log.Println("Starting BeastBattle Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)
	if err := s.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	seedAnimals(s)
	seedBots(s)

	screen := moderation.NewScreen(cfg.Denylist())
	ledger := moderation.NewLedger(s)

	cache := battle.NewHistoryCache(config.HistoryCacheCapacity)
	resolver := battle.NewResolver(s, screen, ledger, cache)
	matchmaker := matchmaking.NewMatchmaker(s)

	catalog := localization.NewCatalog()
	if err := catalog.LoadDir("internal/localization/messages"); err != nil {
		log.Printf("Warning: failed to load message catalog: %v", err)
	}

	hub := battlehub.NewFeedService(s)
	go hub.Run()

	if cfg.TelegramToken != "" && cfg.AdminChatID != 0 {
		bot, err := telegram.NewAlertBot(cfg.TelegramToken, cfg.AdminChatID, s)
		if err != nil {
			log.Printf("Warning: admin alert bot disabled: %v", err)
		} else {
			ledger.Notifier = bot
			go bot.Run()
		}
	}

	r := gin.Default()
	h := handler.NewHandler(s, resolver, matchmaker, screen, ledger, hub, catalog, []byte(cfg.JWTSecret))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/token", h.Token)
	r.GET("/animals", h.ListAnimals)
	r.GET("/leaderboard", h.Leaderboard)
	r.GET("/ws/feed", h.ServeBattleFeed)

	authorized := r.Group("/", h.AuthRequired())
	authorized.POST("/characters", h.CreateCharacter)
	authorized.GET("/characters", h.ListCharacters)
	authorized.POST("/battles", h.CreateBattle)
	authorized.GET("/battles", h.ListBattles)
	authorized.POST("/battles/judge", h.JudgeBattle)
	authorized.GET("/matchmaking", h.Matchmaking)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}

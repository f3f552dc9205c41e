package main

import (
	"fmt"
	"log"
	"os"

	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store := storage.NewService(db, nil) // No redis needed for admin CLI
	ledger := moderation.NewLedger(store)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "suspend":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin suspend <user_id> <reason>")
			os.Exit(1)
		}
		userID, reason := os.Args[2], os.Args[3]
		if err := suspendUser(store, userID, reason); err != nil {
			log.Fatalf("Error suspending user: %v", err)
		}
		fmt.Printf("User %s has been suspended.\n", userID)
	case "unsuspend":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unsuspend <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := ledger.Unsuspend(userID, "admin-cli"); err != nil {
			log.Fatalf("Error unsuspending user: %v", err)
		}
		fmt.Printf("User %s has been unsuspended and their warnings forgiven.\n", userID)
	case "warnings":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin warnings <user_id>")
			os.Exit(1)
		}
		if err := listWarnings(store, os.Args[2]); err != nil {
			log.Fatalf("Error listing warnings: %v", err)
		}
	case "leaderboard":
		entries, err := store.GetLeaderboard(20)
		if err != nil {
			log.Fatalf("Error reading leaderboard: %v", err)
		}
		for _, e := range entries {
			fmt.Printf("%2d. %-24s %-10s base=%d elo=%d (%dW/%dL)\n",
				e.Rank, e.CharacterName, e.AnimalName, e.BaseScore, e.EloScore, e.Wins, e.Losses)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func suspendUser(s *storage.Service, userID, reason string) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}
	if err := s.SuspendUser(userID, reason); err != nil {
		return err
	}
	return s.CreateAuditLog(&models.AuditLog{
		Action: models.AuditAdminSuspend,
		UserID: userID,
		Detail: reason,
	})
}

func listWarnings(s *storage.Service, userID string) error {
	warnings, err := s.GetWarningsForUser(userID)
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		fmt.Println("No warnings on record.")
		return nil
	}
	for _, w := range warnings {
		fmt.Printf("[%s] %s: %q (%v)\n",
			w.CreatedAt.Format("2006-01-02 15:04"), w.Category, w.Content, []string(w.Violations))
	}
	return nil
}

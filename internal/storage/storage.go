package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"beastbattle/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a row does not resolve.
var ErrNotFound = errors.New("record not found")

// Service is the persistence collaborator: PostgreSQL is the source of
// truth, Redis carries the leaderboard fast path, the recent-opponent
// lists and the battle-feed pub/sub channel.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService wires a storage service over the given connections. Redis may
// be nil for CLI use; redis-backed features then degrade to no-ops.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// Migrate creates or updates all engine tables.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Animal{},
		&models.Character{},
		&models.BattleRecord{},
		&models.Warning{},
		&models.AuditLog{},
	)
}

// --- Users -------------------------------------------------------------

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByDisplayName(name string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "display_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AppendWarning stores a warning and bumps the owner's warning count in a
// single transaction. The user row is locked so two concurrent violations
// cannot both observe the pre-increment count around the suspension
// threshold.
func (s *Service) AppendWarning(warning *models.Warning) (int, error) {
	var newCount int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", warning.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(warning).Error; err != nil {
			return err
		}

		user.WarningCount++
		newCount = user.WarningCount
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("warning_count", user.WarningCount).Error
	})
	return newCount, err
}

// SuspendUser flags the account. Idempotent.
func (s *Service) SuspendUser(userID, reason string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_suspended":      true,
			"suspension_reason": reason,
		}).Error
}

// UnsuspendUser clears the suspension flag and the warning count and
// forgives (deletes) the user's prior warnings, re-arming the escalation
// counter. Runs as one transaction.
func (s *Service) UnsuspendUser(userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"is_suspended":      false,
				"suspension_reason": "",
				"warning_count":     0,
			}).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("user_id = ?", userID).
			Delete(&models.Warning{}).Error
	})
}

func (s *Service) GetWarningsForUser(userID string) ([]models.Warning, error) {
	var warnings []models.Warning
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&warnings).Error
	return warnings, err
}

func (s *Service) CreateAuditLog(entry *models.AuditLog) error {
	return s.DB.Create(entry).Error
}

// --- Animals -----------------------------------------------------------

func (s *Service) GetAnimalByID(animalID uint) (*models.Animal, error) {
	var animal models.Animal
	err := s.DB.First(&animal, animalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &animal, nil
}

func (s *Service) ListAnimals() ([]models.Animal, error) {
	var animals []models.Animal
	err := s.DB.Order("id asc").Find(&animals).Error
	return animals, err
}

// SeedAnimals inserts the archetype roster if it is not present yet.
func (s *Service) SeedAnimals(animals []models.Animal) error {
	for i := range animals {
		if err := s.DB.Where(models.Animal{Name: animals[i].Name}).
			FirstOrCreate(&animals[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// --- Characters --------------------------------------------------------

func (s *Service) CreateCharacter(character *models.Character) error {
	return s.DB.Create(character).Error
}

func (s *Service) GetCharacterByID(characterID string) (*models.Character, error) {
	var character models.Character
	err := s.DB.Preload("Animal").First(&character, "id = ?", characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *Service) GetCharactersByUser(userID string) ([]models.Character, error) {
	var characters []models.Character
	err := s.DB.Preload("Animal").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at asc").
		Find(&characters).Error
	return characters, err
}

func (s *Service) CountActiveCharacters(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Character{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (s *Service) DeactivateCharacter(characterID string) error {
	return s.DB.Model(&models.Character{}).
		Where("id = ?", characterID).
		Update("is_active", false).Error
}

// ResetDailyQuota zeroes the character's daily battle counter and stamps
// the reset time. Safe to call redundantly; callers decide whether the day
// boundary has passed.
func (s *Service) ResetDailyQuota(characterID string, resetAt time.Time) error {
	return s.DB.Model(&models.Character{}).
		Where("id = ?", characterID).
		Updates(map[string]interface{}{
			"active_battles_today": 0,
			"last_battle_reset_at": resetAt,
		}).Error
}

// BattleUpdate carries one side's relative increments for a resolved battle.
type BattleUpdate struct {
	CharacterID    string
	BaseDelta      int // applied with the floor-at-zero clamp
	EloDelta       int // applied with the floor-at-1000 clamp
	Won            bool
	CountsForQuota bool // attacker vs non-bot defender only
}

// ApplyBattleOutcome commits one resolved battle: both characters' rating
// and counter updates plus the immutable BattleRecord, in a single
// transaction. All numeric updates are relative increments so concurrent
// battles against the same character never overwrite each other's deltas.
func (s *Service) ApplyBattleOutcome(record *models.BattleRecord, attacker, defender BattleUpdate) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, upd := range []BattleUpdate{attacker, defender} {
			winInc, lossInc := 0, 1
			if upd.Won {
				winInc, lossInc = 1, 0
			}
			quotaInc := 0
			if upd.CountsForQuota {
				quotaInc = 1
			}

			err := tx.Model(&models.Character{}).
				Where("id = ?", upd.CharacterID).
				Updates(map[string]interface{}{
					"base_score":           gorm.Expr("GREATEST(base_score + ?, 0)", upd.BaseDelta),
					"elo_score":            gorm.Expr("GREATEST(elo_score + ?, 1000)", upd.EloDelta),
					"wins":                 gorm.Expr("wins + ?", winInc),
					"losses":               gorm.Expr("losses + ?", lossInc),
					"total_battles":        gorm.Expr("total_battles + 1"),
					"active_battles_today": gorm.Expr("active_battles_today + ?", quotaInc),
				}).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(record).Error
	})
}

// --- Battle history ----------------------------------------------------

func (s *Service) GetBattlesForCharacter(characterID string, limit int) ([]models.BattleRecord, error) {
	var records []models.BattleRecord
	q := s.DB.Where("attacker_id = ? OR defender_id = ?", characterID, characterID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

func (s *Service) CountBattles() (int64, error) {
	var count int64
	err := s.DB.Model(&models.BattleRecord{}).Count(&count).Error
	return count, err
}

func (s *Service) CountUsers() (int64, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Count(&count).Error
	return count, err
}

// --- Matchmaking pool --------------------------------------------------

// GetOpponentPool returns active characters owned by non-suspended users
// other than the requester. Bots are included; they are always legal
// opponents.
func (s *Service) GetOpponentPool(excludeUserID string, limit int) ([]models.Character, error) {
	var characters []models.Character
	q := s.DB.Preload("Animal").
		Joins("JOIN users ON users.id = characters.user_id").
		Where("characters.is_active = ?", true).
		Where("users.is_suspended = ?", false).
		Where("characters.user_id <> ?", excludeUserID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&characters).Error
	return characters, err
}

// PushRecentOpponent remembers a pairing so matchmaking can avoid repeats.
// Best effort; skipped without Redis.
func (s *Service) PushRecentOpponent(characterID, opponentID string, keep int) error {
	if s.Redis == nil {
		return nil
	}
	key := "recent:" + characterID
	pipe := s.Redis.Pipeline()
	pipe.LPush(s.Ctx, key, opponentID)
	pipe.LTrim(s.Ctx, key, 0, int64(keep-1))
	_, err := pipe.Exec(s.Ctx)
	return err
}

// GetRecentOpponents returns up to n most recent opponent character ids.
func (s *Service) GetRecentOpponents(characterID string, n int) ([]string, error) {
	if s.Redis == nil || n <= 0 {
		return nil, nil
	}
	ids, err := s.Redis.LRange(s.Ctx, "recent:"+characterID, 0, int64(n-1)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return ids, err
}

// --- Leaderboard -------------------------------------------------------

const leaderboardKey = "leaderboard:characters"

// leaderboardRank folds both scores into one sortable value so the ZSET
// order matches the SQL (base_score DESC, elo_score DESC) view.
func leaderboardRank(baseScore, eloScore int) float64 {
	return float64(baseScore)*100000 + float64(eloScore)
}

// RefreshLeaderboardEntry updates the Redis fast path after a battle.
func (s *Service) RefreshLeaderboardEntry(character *models.Character) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.ZAdd(s.Ctx, leaderboardKey, redis.Z{
		Score:  leaderboardRank(character.BaseScore, character.EloScore),
		Member: character.ID,
	}).Err()
}

// GetLeaderboard reads the top characters ordered by base score, elo score.
// Tries the Redis ZSET first and falls back to SQL when Redis is cold.
func (s *Service) GetLeaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	if s.Redis != nil {
		ids, err := s.Redis.ZRevRange(s.Ctx, leaderboardKey, 0, int64(limit-1)).Result()
		if err == nil && len(ids) > 0 {
			entries, err := s.leaderboardEntriesByID(ids)
			if err == nil && len(entries) == len(ids) {
				return entries, nil
			}
			log.Printf("WARNING: leaderboard cache out of sync, falling back to SQL")
		}
	}

	var characters []models.Character
	err := s.DB.Preload("Animal").
		Where("is_active = ?", true).
		Order("base_score DESC, elo_score DESC").
		Limit(limit).
		Find(&characters).Error
	if err != nil {
		return nil, err
	}
	entries := make([]models.LeaderboardEntry, 0, len(characters))
	for i := range characters {
		entries = append(entries, toLeaderboardEntry(&characters[i], i+1))
	}
	return entries, nil
}

func (s *Service) leaderboardEntriesByID(ids []string) ([]models.LeaderboardEntry, error) {
	var characters []models.Character
	if err := s.DB.Preload("Animal").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&characters).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Character, len(characters))
	for i := range characters {
		byID[characters[i].ID] = &characters[i]
	}
	entries := make([]models.LeaderboardEntry, 0, len(ids))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		entries = append(entries, toLeaderboardEntry(c, i+1))
	}
	return entries, nil
}

func toLeaderboardEntry(c *models.Character, rank int) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		Rank:          rank,
		CharacterID:   c.ID,
		CharacterName: c.Name,
		AnimalName:    c.Animal.Name,
		BaseScore:     c.BaseScore,
		EloScore:      c.EloScore,
		Wins:          c.Wins,
		Losses:        c.Losses,
	}
}

// --- Battle feed pub/sub ----------------------------------------------

const battleFeedChannel = "battles:feed"

// PublishBattleEvent broadcasts a resolved battle to every instance's
// spectator feed. Best effort.
func (s *Service) PublishBattleEvent(event models.BattleEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal battle event: %w", err)
	}
	return s.Redis.Publish(s.Ctx, battleFeedChannel, payload).Err()
}

// SubscribeBattleFeed subscribes to the shared battle-event channel.
func (s *Service) SubscribeBattleFeed() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, battleFeedChannel)
}

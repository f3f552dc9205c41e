package battle_test

import (
	"time"

	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStore implements battle.Store and moderation.Store so one mock can
// back both the resolver and its warning ledger.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStore) GetCharacterByID(characterID string) (*models.Character, error) {
	args := m.Called(characterID)
	character, _ := args.Get(0).(*models.Character)
	return character, args.Error(1)
}

func (m *MockStore) ResetDailyQuota(characterID string, resetAt time.Time) error {
	args := m.Called(characterID, resetAt)
	return args.Error(0)
}

func (m *MockStore) ApplyBattleOutcome(record *models.BattleRecord, attacker, defender storage.BattleUpdate) error {
	args := m.Called(record, attacker, defender)
	return args.Error(0)
}

func (m *MockStore) GetBattlesForCharacter(characterID string, limit int) ([]models.BattleRecord, error) {
	args := m.Called(characterID, limit)
	records, _ := args.Get(0).([]models.BattleRecord)
	return records, args.Error(1)
}

func (m *MockStore) RefreshLeaderboardEntry(character *models.Character) error {
	args := m.Called(character)
	return args.Error(0)
}

func (m *MockStore) PushRecentOpponent(characterID, opponentID string, keep int) error {
	args := m.Called(characterID, opponentID, keep)
	return args.Error(0)
}

func (m *MockStore) PublishBattleEvent(event models.BattleEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// moderation.Store methods, used through the ledger.

func (m *MockStore) AppendWarning(warning *models.Warning) (int, error) {
	args := m.Called(warning)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) SuspendUser(userID, reason string) error {
	args := m.Called(userID, reason)
	return args.Error(0)
}

func (m *MockStore) UnsuspendUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStore) CreateAuditLog(entry *models.AuditLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStore) GetWarningsForUser(userID string) ([]models.Warning, error) {
	args := m.Called(userID)
	warnings, _ := args.Get(0).([]models.Warning)
	return warnings, args.Error(1)
}

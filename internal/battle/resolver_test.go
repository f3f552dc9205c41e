package battle_test

import (
	"errors"
	"testing"
	"time"

	"beastbattle/backend/internal/apperr"
	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
	"beastbattle/backend/internal/moderation"
	"beastbattle/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestResolver(store *MockStore) *battle.Resolver {
	resolver := battle.NewResolver(
		store,
		moderation.NewScreen(config.DefaultDenylist),
		moderation.NewLedger(store),
		battle.NewHistoryCache(16),
	)
	resolver.Rand = nil // no jitter: outcomes depend only on inputs
	resolver.Now = func() time.Time { return fixedNow }
	return resolver
}

func freshCharacter(id, userID string) *models.Character {
	return &models.Character{
		ID:     id,
		UserID: userID,
		Name:   "Fighter " + id,
		Animal: models.Animal{
			Name: "Lion", Attack: 70, Strength: 70, Speed: 70, Energy: 70,
		},
		BattleText:        "we fight with honor and courage",
		BaseScore:         1000,
		EloScore:          1500,
		LastBattleResetAt: fixedNow,
		IsActive:          true,
	}
}

func expectSideEffects(store *MockStore) {
	store.On("RefreshLeaderboardEntry", mock.Anything).Return(nil)
	store.On("PushRecentOpponent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("PublishBattleEvent", mock.Anything).Return(nil)
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var appErr *apperr.Error
	assert.True(t, errors.As(err, &appErr), "expected a tagged engine error, got %v", err)
	return appErr.Kind
}

func TestResolve_EqualSidesAttackerWinsTie(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	defender := freshCharacter("char-d", "user-d")

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-d").Return(defender, nil)

	var record *models.BattleRecord
	var attackerUpd, defenderUpd storage.BattleUpdate
	store.On("ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			record = args.Get(0).(*models.BattleRecord)
			attackerUpd = args.Get(1).(storage.BattleUpdate)
			defenderUpd = args.Get(2).(storage.BattleUpdate)
		}).
		Return(nil).Once()
	expectSideEffects(store)

	result, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.NoError(t, err)

	// Identical texts and stats tie; the attacker wins ties.
	assert.Equal(t, "char-a", result.WinnerID)
	assert.Equal(t, result.AttackerScore, result.DefenderScore)

	// Exactly one record, referencing both participants and the winner.
	assert.Equal(t, "char-a", record.AttackerID)
	assert.Equal(t, "char-d", record.DefenderID)
	assert.Equal(t, "char-a", record.WinnerID)
	assert.Equal(t, models.BattleTypeActive, record.BattleType)

	// 1000/1000 base and 1500/1500 elo: +10/-5 and +16/-16.
	assert.Equal(t, 10, attackerUpd.BaseDelta)
	assert.Equal(t, -5, defenderUpd.BaseDelta)
	assert.Equal(t, 16, attackerUpd.EloDelta)
	assert.Equal(t, -16, defenderUpd.EloDelta)
	assert.True(t, attackerUpd.Won)
	assert.False(t, defenderUpd.Won)
	assert.True(t, attackerUpd.CountsForQuota, "non-bot defender counts toward quota")
	assert.False(t, defenderUpd.CountsForQuota)

	assert.Equal(t, 1010, result.Attacker.BaseScore)
	assert.Equal(t, 995, result.Defender.BaseScore)
	assert.Equal(t, 1516, result.Attacker.EloScore)
	assert.Equal(t, 1484, result.Defender.EloScore)

	store.AssertExpectations(t)
}

func TestResolve_SuspendedUserIsForbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByID", "user-a").Return(&models.User{
		ID: "user-a", IsSuspended: true, SuspensionReason: "3 strikes",
	}, nil)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.Equal(t, apperr.Forbidden, kindOf(t, err))
	store.AssertNotCalled(t, "ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_ForeignAttackerIsForbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-x").Return(freshCharacter("char-x", "someone-else"), nil)

	_, err := newTestResolver(store).Resolve("user-a", "char-x", "char-d")

	assert.Equal(t, apperr.Forbidden, kindOf(t, err))
}

func TestResolve_UnknownDefenderIsNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(freshCharacter("char-a", "user-a"), nil)
	store.On("GetCharacterByID", "char-missing").Return(nil, storage.ErrNotFound)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-missing")

	assert.Equal(t, apperr.NotFound, kindOf(t, err))
}

func TestResolve_QuotaExceededNamesBotExemption(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	attacker.ActiveBattlesToday = config.DailyBattleLimit
	defender := freshCharacter("char-d", "user-d")

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-d").Return(defender, nil)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.Equal(t, apperr.QuotaExceeded, kindOf(t, err))
	assert.Contains(t, err.Error(), "bot")
	store.AssertNotCalled(t, "ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_BotOpponentBypassesQuota(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	attacker.ActiveBattlesToday = config.DailyBattleLimit
	bot := freshCharacter("char-bot", "bot-owner")
	bot.IsBot = true

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-bot").Return(bot, nil)

	var attackerUpd storage.BattleUpdate
	store.On("ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			attackerUpd = args.Get(1).(storage.BattleUpdate)
		}).
		Return(nil).Once()
	expectSideEffects(store)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-bot")

	assert.NoError(t, err)
	assert.False(t, attackerUpd.CountsForQuota, "bot battles never count toward the quota")
}

func TestResolve_StaleQuotaIsResetOnDayRollover(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	attacker.ActiveBattlesToday = config.DailyBattleLimit
	attacker.LastBattleResetAt = fixedNow.Add(-48 * time.Hour)
	defender := freshCharacter("char-d", "user-d")

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-d").Return(defender, nil)
	store.On("ResetDailyQuota", "char-a", fixedNow).Return(nil).Once()
	store.On("ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	expectSideEffects(store)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.NoError(t, err, "yesterday's exhausted quota must not block today")
	store.AssertExpectations(t)
}

func TestResolve_SameDayResetIsNotRepeated(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	attacker.LastBattleResetAt = fixedNow.Add(-2 * time.Hour) // same UTC day
	defender := freshCharacter("char-d", "user-d")

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-d").Return(defender, nil)
	store.On("ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	expectSideEffects(store)

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.NoError(t, err)
	store.AssertNotCalled(t, "ResetDailyQuota", mock.Anything, mock.Anything)
}

func TestResolve_RejectedTextAccruesWarning(t *testing.T) {
	store := new(MockStore)
	attacker := freshCharacter("char-a", "user-a")
	attacker.BattleText = "hi"
	defender := freshCharacter("char-d", "user-d")

	store.On("GetUserByID", "user-a").Return(&models.User{ID: "user-a"}, nil)
	store.On("GetCharacterByID", "char-a").Return(attacker, nil)
	store.On("GetCharacterByID", "char-d").Return(defender, nil)
	store.On("AppendWarning", mock.MatchedBy(func(w *models.Warning) bool {
		return w.UserID == "user-a" && w.Content == "hi"
	})).Return(1, nil).Once()

	_, err := newTestResolver(store).Resolve("user-a", "char-a", "char-d")

	assert.Equal(t, apperr.ContentRejected, kindOf(t, err))

	var appErr *apperr.Error
	errors.As(err, &appErr)
	assert.NotEmpty(t, appErr.Violations)

	// No battle record on a rejected submission; the warning is the only
	// intended side effect.
	store.AssertNotCalled(t, "ApplyBattleOutcome", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestHistory_SecondReadIsServedFromCache(t *testing.T) {
	store := new(MockStore)
	character := freshCharacter("char-a", "user-a")
	records := []models.BattleRecord{{ID: "b1"}, {ID: "b2"}}

	store.On("GetCharacterByID", "char-a").Return(character, nil)
	store.On("GetBattlesForCharacter", "char-a", 20).Return(records, nil).Once()

	resolver := newTestResolver(store)

	first, err := resolver.History("user-a", "char-a", 20)
	assert.NoError(t, err)
	second, err := resolver.History("user-a", "char-a", 20)
	assert.NoError(t, err)

	assert.Equal(t, records, first)
	assert.Equal(t, records, second)
	store.AssertExpectations(t)
}

func TestHistory_ForeignCharacterIsForbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetCharacterByID", "char-x").Return(freshCharacter("char-x", "someone-else"), nil)

	_, err := newTestResolver(store).History("user-a", "char-x", 20)

	assert.Equal(t, apperr.Forbidden, kindOf(t, err))
}

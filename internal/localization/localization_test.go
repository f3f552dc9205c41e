package localization_test

import (
	"testing"

	"beastbattle/backend/internal/localization"

	"github.com/stretchr/testify/assert"
)

func TestMessage_FallsBackToBuiltInDefaults(t *testing.T) {
	catalog := localization.NewCatalog()

	msg := catalog.Message("fr", localization.KeyEncourageWinner)

	assert.NotEmpty(t, msg)
	assert.NotEqual(t, localization.KeyEncourageWinner, msg)
}

func TestMessage_UnknownKeyComesBackAsKey(t *testing.T) {
	catalog := localization.NewCatalog()
	assert.Equal(t, "no.such.key", catalog.Message("en", "no.such.key"))
}

func TestEncouragement_PicksLineByOutcome(t *testing.T) {
	catalog := localization.NewCatalog()

	winner := catalog.Encouragement("en", true, 20)
	loser := catalog.Encouragement("en", false, 20)
	nearTie := catalog.Encouragement("en", true, 1)

	assert.NotEqual(t, winner, loser)
	assert.NotEqual(t, winner, nearTie)
	assert.Contains(t, nearTie, "nail-biter")
}

func TestLoadDir_MissingDirectoryIsNotAnError(t *testing.T) {
	catalog := localization.NewCatalog()
	assert.NoError(t, catalog.LoadDir("does/not/exist"))
}

// Package localization provides the player-facing message catalog: battle
// verdict lines and the encouragement strings returned by the judging
// endpoint. English defaults are built in; JSON files in a message
// directory override or add languages.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Message keys used by the engine.
const (
	KeyEncourageWinner = "encourage.winner"
	KeyEncourageLoser  = "encourage.loser"
	KeyEncourageClose  = "encourage.close"
)

var defaultMessages = map[string]string{
	KeyEncourageWinner: "Amazing battle cry! Your creativity won the day.",
	KeyEncourageLoser:  "So close! Try a longer, more imaginative battle cry next time.",
	KeyEncourageClose:  "What a nail-biter! Both fighters gave it everything.",
}

// Catalog holds per-language message maps with an English fallback chain:
// requested language, then "en" overrides, then the built-in defaults.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog returns a catalog with only the built-in defaults.
func NewCatalog() *Catalog {
	return &Catalog{messages: make(map[string]map[string]string)}
}

// LoadDir merges every "<lang>.json" file from dir into the catalog.
// Missing directories are not an error; the defaults still apply.
func (c *Catalog) LoadDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read message directory: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read message file %s: %w", file.Name(), err)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("failed to parse message file %s: %w", file.Name(), err)
		}

		if c.messages[lang] == nil {
			c.messages[lang] = make(map[string]string)
		}
		for key, value := range messages {
			c.messages[lang][key] = value
		}
	}
	return nil
}

// Message resolves a key for a language, falling back to English and then
// to the built-in defaults. Unknown keys come back as the key itself.
func (c *Catalog) Message(lang, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, ok := c.messages[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if lang != "en" {
		if m, ok := c.messages["en"]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if v, ok := defaultMessages[key]; ok {
		return v
	}
	return key
}

// Encouragement picks the line matching how the judged battle went: a
// near-tie gets the "close" line, otherwise the winner/loser line.
func (c *Catalog) Encouragement(lang string, callerWon bool, scoreGap float64) string {
	if scoreGap < 3 {
		return c.Message(lang, KeyEncourageClose)
	}
	if callerWon {
		return c.Message(lang, KeyEncourageWinner)
	}
	return c.Message(lang, KeyEncourageLoser)
}

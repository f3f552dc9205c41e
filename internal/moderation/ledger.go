package moderation

import (
	"fmt"
	"log"

	"beastbattle/backend/internal/config"
	"beastbattle/backend/internal/models"
)

// Store is the slice of persistence the ledger needs.
type Store interface {
	AppendWarning(warning *models.Warning) (int, error)
	SuspendUser(userID, reason string) error
	UnsuspendUser(userID string) error
	CreateAuditLog(entry *models.AuditLog) error
	GetWarningsForUser(userID string) ([]models.Warning, error)
}

// Notifier is told about automatic suspensions (e.g. the admin alert bot).
type Notifier interface {
	NotifySuspension(userID, reason string)
}

// Ledger records violations per user and escalates to suspension once the
// warning count reaches the configured threshold.
type Ledger struct {
	Store     Store
	Threshold int
	Notifier  Notifier // optional
}

// NewLedger creates a ledger with the default suspension threshold.
func NewLedger(store Store) *Ledger {
	return &Ledger{Store: store, Threshold: config.SuspensionThreshold}
}

// RecordViolation appends a warning for the user and suspends the account
// when the updated count reaches the threshold. Callers must invoke this
// synchronously before returning a rejection so accrual is never lost on
// an error path.
func (l *Ledger) RecordViolation(userID string, result ScreenResult, content string) (int, bool, error) {
	warning := &models.Warning{
		UserID:     userID,
		Category:   result.Category.String(),
		Content:    content,
		Violations: result.Violations,
	}

	count, err := l.Store.AppendWarning(warning)
	if err != nil {
		return 0, false, err
	}

	if count < l.Threshold {
		return count, false, nil
	}

	reason := fmt.Sprintf(
		"Account suspended after %d content violations. Last offending submission: %q",
		count, content)

	if err := l.Store.SuspendUser(userID, reason); err != nil {
		return count, false, err
	}

	audit := &models.AuditLog{
		Action: models.AuditAutoSuspension,
		UserID: userID,
		Detail: reason,
	}
	if err := l.Store.CreateAuditLog(audit); err != nil {
		log.Printf("ERROR: failed to write auto_suspension audit log for %s: %v", userID, err)
	}

	if l.Notifier != nil {
		l.Notifier.NotifySuspension(userID, reason)
	}

	return count, true, nil
}

// Unsuspend lifts a suspension: clears the flag and warning count, forgives
// prior warnings and records the administrative action.
func (l *Ledger) Unsuspend(userID, actor string) error {
	if err := l.Store.UnsuspendUser(userID); err != nil {
		return err
	}
	return l.Store.CreateAuditLog(&models.AuditLog{
		Action: models.AuditAdminUnsuspend,
		UserID: userID,
		Detail: fmt.Sprintf("suspension lifted by %s, warnings forgiven", actor),
	})
}

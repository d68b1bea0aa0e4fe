// Package override implements the operator-controlled disable list for
// learned rules. Overrides are keyed identically to rules
// ("source_norm=>target_norm") and are persisted independently of rule
// snapshots: a rebuild never touches them, and a disabled rule stays in the
// snapshot — it is only excluded from exported overlays.
package override

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrInvalidKey is returned when a rule key is not of the form
// "source=>target".
var ErrInvalidKey = errors.New("rule key must be of the form source=>target")

// Override is one row of the disable list.
type Override struct {
	RuleKey   string    `json:"rule_key"`
	Disabled  bool      `json:"disabled"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateKey checks the "source=>target" key form.
func ValidateKey(key string) error {
	source, target, ok := strings.Cut(key, "=>")
	if !ok || source == "" || target == "" {
		return ErrInvalidKey
	}
	return nil
}

// Store manages the persistent override map.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates an override store.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Set toggles the disabled flag for a rule key. Disabling upserts the row
// with the optional reason; enabling removes it. The key is validated first.
func (s *Store) Set(ctx context.Context, key string, disabled bool, reason string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if !disabled {
		_, err := s.db.ExecContext(ctx, "DELETE FROM rule_override WHERE rule_key = ?", key)
		if err != nil {
			return fmt.Errorf("failed to clear override: %w", err)
		}
		s.logger.Debug("override cleared", "rule_key", key)
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_override (rule_key, disabled, reason, updated_ms)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(rule_key) DO UPDATE SET
			disabled   = 1,
			reason     = excluded.reason,
			updated_ms = excluded.updated_ms`,
		key, reason, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}
	s.logger.Debug("override set", "rule_key", key, "reason", reason)
	return nil
}

// Disabled returns the full disabled map keyed by rule key.
func (s *Store) Disabled(ctx context.Context) (map[string]Override, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rule_key, disabled, COALESCE(reason, ''), updated_ms FROM rule_override WHERE disabled = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Override)
	for rows.Next() {
		var o Override
		var disabled int
		var updatedMs int64
		if err := rows.Scan(&o.RuleKey, &disabled, &o.Reason, &updatedMs); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		o.Disabled = disabled != 0
		o.UpdatedAt = time.UnixMilli(updatedMs)
		out[o.RuleKey] = o
	}
	return out, rows.Err()
}

// IsDisabled reports whether a rule key is currently disabled.
func (s *Store) IsDisabled(ctx context.Context, key string) (bool, error) {
	var disabled int
	err := s.db.QueryRowContext(ctx,
		"SELECT disabled FROM rule_override WHERE rule_key = ?", key).Scan(&disabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query override: %w", err)
	}
	return disabled != 0, nil
}

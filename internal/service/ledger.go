package service

import (
	"context"
	"errors"
	"time"

	"github.com/villaingsk/woo-protect/internal/clock"
	"github.com/villaingsk/woo-protect/internal/repo"

	"gorm.io/gorm"
)

// LedgerService is the per-visitor session ledger: which categories a
// session has unlocked and when. Expiry is evaluated at read time
// against the configured session duration; expired rows are purged
// lazily, there is no background sweep.
type LedgerService struct {
	unlocks  repo.UnlockRepository
	settings repo.SettingsRepository
	clock    clock.Clock
}

func NewLedgerService(unlocks repo.UnlockRepository, settings repo.SettingsRepository, clk clock.Clock) *LedgerService {
	return &LedgerService{unlocks: unlocks, settings: settings, clock: clk}
}

func (s *LedgerService) duration(ctx context.Context) (time.Duration, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(st.SessionDurationHours) * time.Hour, nil
}

// Unlock records that the session unlocked the category now.
func (s *LedgerService) Unlock(ctx context.Context, sessionID string, categoryID int64) error {
	return s.unlocks.Upsert(ctx, sessionID, categoryID, s.clock.Now().UTC())
}

// IsUnlocked reports whether the session holds a still-valid unlock for
// the category. An entry older than the session duration counts as
// absent and is removed.
func (s *LedgerService) IsUnlocked(ctx context.Context, sessionID string, categoryID int64) (bool, error) {
	row, err := s.unlocks.Get(ctx, sessionID, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	dur, err := s.duration(ctx)
	if err != nil {
		return false, err
	}
	now := s.clock.Now().UTC()
	if now.Sub(row.UnlockedAt) >= dur {
		// lazy purge, failure is not fatal to the read
		_ = s.unlocks.DeleteExpired(ctx, sessionID, now.Add(-dur))
		return false, nil
	}
	return true, nil
}

// ListUnlocked returns the category IDs with a still-valid unlock.
func (s *LedgerService) ListUnlocked(ctx context.Context, sessionID string) ([]int64, error) {
	rows, err := s.unlocks.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dur, err := s.duration(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	ids := make([]int64, 0, len(rows))
	expired := false
	for _, row := range rows {
		if now.Sub(row.UnlockedAt) < dur {
			ids = append(ids, row.CategoryID)
		} else {
			expired = true
		}
	}
	if expired {
		_ = s.unlocks.DeleteExpired(ctx, sessionID, now.Add(-dur))
	}
	return ids, nil
}

// Clear drops every unlock of the session (logout).
func (s *LedgerService) Clear(ctx context.Context, sessionID string) error {
	return s.unlocks.DeleteBySession(ctx, sessionID)
}

package repo

import (
	"context"
	"time"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockRepository is the durable per-visitor session ledger.
type UnlockRepository interface {
	// Upsert records (or refreshes) an unlock for the session/category pair.
	Upsert(ctx context.Context, sessionID string, categoryID int64, at time.Time) error

	// Get returns the unlock row, gorm.ErrRecordNotFound if absent.
	Get(ctx context.Context, sessionID string, categoryID int64) (*model.CategoryUnlock, error)

	// ListBySession returns every unlock row of one visitor session.
	ListBySession(ctx context.Context, sessionID string) ([]model.CategoryUnlock, error)

	// DeleteBySession removes all rows of a session (logout).
	DeleteBySession(ctx context.Context, sessionID string) error

	// DeleteExpired removes rows of the session unlocked before cutoff (lazy purge).
	DeleteExpired(ctx context.Context, sessionID string, cutoff time.Time) error
}

type unlockRepo struct {
	db *gorm.DB
}

func NewUnlockRepository(db *gorm.DB) UnlockRepository {
	return &unlockRepo{db: db}
}

func (r *unlockRepo) Upsert(ctx context.Context, sessionID string, categoryID int64, at time.Time) error {
	row := &model.CategoryUnlock{SessionID: sessionID, CategoryID: categoryID, UnlockedAt: at}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"unlocked_at"}),
	}).Create(row).Error
}

func (r *unlockRepo) Get(ctx context.Context, sessionID string, categoryID int64) (*model.CategoryUnlock, error) {
	var row model.CategoryUnlock
	err := r.db.WithContext(ctx).
		First(&row, "session_id = ? AND category_id = ?", sessionID, categoryID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *unlockRepo) ListBySession(ctx context.Context, sessionID string) ([]model.CategoryUnlock, error) {
	var rows []model.CategoryUnlock
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("category_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *unlockRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Delete(&model.CategoryUnlock{}, "session_id = ?", sessionID).Error
}

func (r *unlockRepo) DeleteExpired(ctx context.Context, sessionID string, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Delete(&model.CategoryUnlock{}, "session_id = ? AND unlocked_at < ?", sessionID, cutoff).Error
}

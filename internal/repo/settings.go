package repo

import (
	"context"
	"errors"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/gorm"
)

// SettingsRepository stores the singleton settings row.
type SettingsRepository interface {
	// Get returns the saved settings, or the defaults when nothing was saved yet.
	Get(ctx context.Context) (*model.Settings, error)

	// Save replaces the singleton row.
	Save(ctx context.Context, s *model.Settings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	err := r.db.WithContext(ctx).First(&s, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s *model.Settings) error {
	s.ID = 1
	return r.db.WithContext(ctx).Save(s).Error
}

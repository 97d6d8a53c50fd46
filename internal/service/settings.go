package service

import (
	"context"

	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"

	"gorm.io/gorm"
)

// CategorySave is the per-category part of an administrative save.
// An empty Password means "keep the current one".
type CategorySave struct {
	Enabled  bool
	Password string
}

// SaveAllInput is one administrative save: the global settings plus any
// number of per-category protection changes.
type SaveAllInput struct {
	LockTitle            string
	LockMessage          string
	SessionDurationHours int
	RedirectURL          string
	Categories           map[int64]CategorySave
}

// SettingsService reads and writes the gate configuration. Saves run in
// one transaction so a failed save leaves nothing half-applied.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	return repo.NewSettingsRepository(s.db).Get(ctx)
}

// SaveAll persists the settings and every category change atomically.
func (s *SettingsService) SaveAll(ctx context.Context, in SaveAllInput) error {
	hours := in.SessionDurationHours
	if hours < model.MinSessionDurationHours {
		hours = model.DefaultSessionDurationHours
	}
	if hours > model.MaxSessionDurationHours {
		hours = model.MaxSessionDurationHours
	}

	title := in.LockTitle
	if title == "" {
		title = model.DefaultLockTitle
	}
	message := in.LockMessage
	if message == "" {
		message = model.DefaultLockMessage
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.NewSettingsRepository(tx).Save(ctx, &model.Settings{
			LockTitle:            title,
			LockMessage:          message,
			SessionDurationHours: hours,
			RedirectURL:          in.RedirectURL,
		}); err != nil {
			return err
		}

		protection := NewProtectionService(repo.NewProtectionRepository(tx))
		for categoryID, c := range in.Categories {
			if err := protection.Save(ctx, categoryID, c.Password, c.Enabled); err != nil {
				return err
			}
		}
		return nil
	})
}

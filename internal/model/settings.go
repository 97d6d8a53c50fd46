package model

import "time"

// Default gate settings, applied when no row has been saved yet.
const (
	DefaultLockTitle            = "Protected Category"
	DefaultLockMessage          = "This category is password protected. Please enter the password to continue."
	DefaultSessionDurationHours = 24

	// Allowed range for SessionDurationHours (1 hour to 1 year).
	MinSessionDurationHours = 1
	MaxSessionDurationHours = 8760
)

// Settings is the singleton gate configuration row.
type Settings struct {
	ID int64 `gorm:"primaryKey"`

	LockTitle            string `gorm:"not null"`
	LockMessage          string `gorm:"not null"`
	SessionDurationHours int    `gorm:"not null;default:24"`
	RedirectURL          string

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// DefaultSettings returns the settings used before the first save.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                   1,
		LockTitle:            DefaultLockTitle,
		LockMessage:          DefaultLockMessage,
		SessionDurationHours: DefaultSessionDurationHours,
	}
}

package model

import "time"

// CategoryUnlock is one ledger row: a visitor session has unlocked a
// category at the given time. Rows age out by read-time expiry check;
// the whole set for a session is removed on logout.
type CategoryUnlock struct {
	SessionID  string    `gorm:"primaryKey;type:uuid"`
	CategoryID int64     `gorm:"primaryKey"`
	UnlockedAt time.Time `gorm:"not null"`
}

package model

import "time"

// Admin is an administrator account allowed to edit protection settings.
// Password holds the bcrypt hash.
type Admin struct {
	ID       int64  `gorm:"primaryKey"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

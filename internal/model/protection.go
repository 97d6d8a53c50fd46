package model

import "time"

// ProtectionRecord stores the protection state of one category.
// Only the bcrypt hash is kept; the raw password is never persisted.
type ProtectionRecord struct {
	CategoryID   int64  `gorm:"primaryKey"`
	Enabled      bool   `gorm:"not null;default:false"`
	PasswordHash string `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

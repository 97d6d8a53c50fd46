package model

// Category is the local read model of the external catalog taxonomy.
// The catalog owns these rows; this service only needs identifiers and
// slugs, the rest is informational.
type Category struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Slug         string `gorm:"uniqueIndex;not null" json:"slug"`
	ParentID     *int64 `gorm:"index" json:"parent_id,omitempty"`
	ProductCount int64  `gorm:"not null;default:0" json:"product_count"`
}

package repo

import (
	"context"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProtectionRepository is the durable category -> protection state mapping.
type ProtectionRepository interface {
	// Get returns the record for the category, gorm.ErrRecordNotFound if absent.
	Get(ctx context.Context, categoryID int64) (*model.ProtectionRecord, error)

	// Upsert inserts or fully replaces the record for rec.CategoryID.
	Upsert(ctx context.Context, rec *model.ProtectionRecord) error

	// Delete removes the record entirely. Deleting an absent record is not an error.
	Delete(ctx context.Context, categoryID int64) error

	// ListEnabled returns every record with Enabled set and a non-empty hash.
	ListEnabled(ctx context.Context) ([]model.ProtectionRecord, error)
}

type protectionRepo struct {
	db *gorm.DB
}

func NewProtectionRepository(db *gorm.DB) ProtectionRepository {
	return &protectionRepo{db: db}
}

func (r *protectionRepo) Get(ctx context.Context, categoryID int64) (*model.ProtectionRecord, error) {
	var rec model.ProtectionRecord
	if err := r.db.WithContext(ctx).First(&rec, "category_id = ?", categoryID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *protectionRepo) Upsert(ctx context.Context, rec *model.ProtectionRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "password_hash", "updated_at"}),
	}).Create(rec).Error
}

func (r *protectionRepo) Delete(ctx context.Context, categoryID int64) error {
	return r.db.WithContext(ctx).Delete(&model.ProtectionRecord{}, "category_id = ?", categoryID).Error
}

func (r *protectionRepo) ListEnabled(ctx context.Context) ([]model.ProtectionRecord, error) {
	var recs []model.ProtectionRecord
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND password_hash <> ''", true).
		Order("category_id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

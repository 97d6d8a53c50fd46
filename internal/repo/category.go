package repo

import (
	"context"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository reads the local copy of the external catalog taxonomy.
type CategoryRepository interface {
	// GetByID returns one category, gorm.ErrRecordNotFound if absent.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// ListAll returns all categories ordered by name.
	ListAll(ctx context.Context) ([]model.Category, error)

	// ReplaceAll imports a fresh snapshot from the catalog provider:
	// upserts the given rows and removes everything else.
	ReplaceAll(ctx context.Context, cats []model.Category) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepo) ReplaceAll(ctx context.Context, cats []model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(cats))
		for _, c := range cats {
			ids = append(ids, c.ID)
		}
		if len(cats) == 0 {
			return tx.Exec("DELETE FROM categories").Error
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&cats).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, "id NOT IN ?", ids).Error
	})
}

package repo

import (
	"context"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/gorm"
)

// AdminRepository stores administrator accounts.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) (*model.Admin, error)
	GetAdminByLogin(ctx context.Context, login string) (*model.Admin, error)
	CountAdmins(ctx context.Context) (int64, error)
}

type adminRepo struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) CreateAdmin(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *adminRepo) GetAdminByLogin(ctx context.Context, login string) (*model.Admin, error) {
	var a model.Admin
	if err := r.db.WithContext(ctx).First(&a, "login = ?", login).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Admin{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

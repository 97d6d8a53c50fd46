package service

import (
	"context"
	"time"

	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"

	"github.com/stretchr/testify/mock"
)

// Mocks for the repository interfaces used by the services.

type mockProtectionRepo struct{ mock.Mock }

func (m *mockProtectionRepo) Get(ctx context.Context, categoryID int64) (*model.ProtectionRecord, error) {
	args := m.Called(ctx, categoryID)
	if rec, ok := args.Get(0).(*model.ProtectionRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProtectionRepo) Upsert(ctx context.Context, rec *model.ProtectionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockProtectionRepo) Delete(ctx context.Context, categoryID int64) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *mockProtectionRepo) ListEnabled(ctx context.Context) ([]model.ProtectionRecord, error) {
	args := m.Called(ctx)
	if recs, ok := args.Get(0).([]model.ProtectionRecord); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ProtectionRepository = (*mockProtectionRepo)(nil)

type mockUnlockRepo struct{ mock.Mock }

func (m *mockUnlockRepo) Upsert(ctx context.Context, sessionID string, categoryID int64, at time.Time) error {
	args := m.Called(ctx, sessionID, categoryID, at)
	return args.Error(0)
}

func (m *mockUnlockRepo) Get(ctx context.Context, sessionID string, categoryID int64) (*model.CategoryUnlock, error) {
	args := m.Called(ctx, sessionID, categoryID)
	if row, ok := args.Get(0).(*model.CategoryUnlock); ok {
		return row, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUnlockRepo) ListBySession(ctx context.Context, sessionID string) ([]model.CategoryUnlock, error) {
	args := m.Called(ctx, sessionID)
	if rows, ok := args.Get(0).([]model.CategoryUnlock); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUnlockRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockUnlockRepo) DeleteExpired(ctx context.Context, sessionID string, cutoff time.Time) error {
	args := m.Called(ctx, sessionID, cutoff)
	return args.Error(0)
}

var _ repo.UnlockRepository = (*mockUnlockRepo)(nil)

type mockSettingsRepo struct{ mock.Mock }

func (m *mockSettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*model.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSettingsRepo) Save(ctx context.Context, s *model.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

var _ repo.SettingsRepository = (*mockSettingsRepo)(nil)

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*model.Category); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if cats, ok := args.Get(0).([]model.Category); ok {
		return cats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryRepo) ReplaceAll(ctx context.Context, cats []model.Category) error {
	args := m.Called(ctx, cats)
	return args.Error(0)
}

var _ repo.CategoryRepository = (*mockCategoryRepo)(nil)

type mockAdminRepo struct{ mock.Mock }

func (m *mockAdminRepo) CreateAdmin(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	args := m.Called(ctx, admin)
	if a, ok := args.Get(0).(*model.Admin); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminRepo) GetAdminByLogin(ctx context.Context, login string) (*model.Admin, error) {
	args := m.Called(ctx, login)
	if a, ok := args.Get(0).(*model.Admin); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminRepo) CountAdmins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.AdminRepository = (*mockAdminRepo)(nil)

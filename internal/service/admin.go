package service

import (
	"context"
	"errors"

	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrLoginTaken — registration with an already used login.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidCredentials — unknown login or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminService manages administrator accounts.
type AdminService struct {
	repo repo.AdminRepository
}

func NewAdminService(r repo.AdminRepository) *AdminService {
	return &AdminService{repo: r}
}

// Register creates an administrator with a bcrypt-hashed password.
func (s *AdminService) Register(ctx context.Context, login, password string) (*model.Admin, error) {
	existing, err := s.repo.GetAdminByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateAdmin(ctx, &model.Admin{Login: login, Password: string(hash)})
}

// Login checks credentials and returns the account.
func (s *AdminService) Login(ctx context.Context, login, password string) (*model.Admin, error) {
	admin, err := s.repo.GetAdminByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// HasAdmins reports whether any account exists. Registration is open
// only for the first account (bootstrap) or to an authenticated admin.
func (s *AdminService) HasAdmins(ctx context.Context) (bool, error) {
	n, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

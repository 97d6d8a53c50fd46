package service

import (
	"context"
	"errors"

	"github.com/villaingsk/woo-protect/internal/repo"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotProtected — verification attempted for an unprotected category.
	ErrNotProtected = errors.New("category is not protected")
	// ErrNoCredential — protection enabled but no hash stored.
	ErrNoCredential = errors.New("no password configured for category")
	// ErrWrongPassword — submitted password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
)

// VerifyService checks a submitted password and, on success, unlocks the
// category for the visitor session. The ledger is untouched on every
// failure path.
type VerifyService struct {
	protection *ProtectionService
	ledger     *LedgerService
	categories repo.CategoryRepository
	settings   repo.SettingsRepository
	basePath   string
}

func NewVerifyService(protection *ProtectionService, ledger *LedgerService, categories repo.CategoryRepository, settings repo.SettingsRepository, basePath string) *VerifyService {
	return &VerifyService{
		protection: protection,
		ledger:     ledger,
		categories: categories,
		settings:   settings,
		basePath:   basePath,
	}
}

// Verify validates the password for the category and unlocks it for the
// session. Returns the redirect target for the unlocked category.
func (s *VerifyService) Verify(ctx context.Context, sessionID string, categoryID int64, password string) (string, error) {
	protected, err := s.protection.IsProtected(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if !protected {
		return "", ErrNotProtected
	}

	hash, err := s.protection.Hash(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if hash == "" {
		return "", ErrNoCredential
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrWrongPassword
	}

	if err := s.ledger.Unlock(ctx, sessionID, categoryID); err != nil {
		return "", err
	}
	return s.redirectTarget(ctx, categoryID), nil
}

// redirectTarget resolves the category's canonical path, falling back to
// the configured redirect URL and then to the site root.
func (s *VerifyService) redirectTarget(ctx context.Context, categoryID int64) string {
	if cat, err := s.categories.GetByID(ctx, categoryID); err == nil {
		return s.basePath + "/" + cat.Slug + "/"
	}
	if st, err := s.settings.Get(ctx); err == nil && st.RedirectURL != "" {
		return st.RedirectURL
	}
	return "/"
}

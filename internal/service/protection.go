package service

import (
	"context"
	"errors"

	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProtectionService is the credential store: which categories are
// protected and with what password hash.
type ProtectionService struct {
	repo repo.ProtectionRepository
}

func NewProtectionService(r repo.ProtectionRepository) *ProtectionService {
	return &ProtectionService{repo: r}
}

// IsProtected reports whether the category has protection enabled with a
// password configured. A record with no hash counts as unprotected.
func (s *ProtectionService) IsProtected(ctx context.Context, categoryID int64) (bool, error) {
	rec, err := s.repo.Get(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Enabled && rec.PasswordHash != "", nil
}

// Hash returns the stored password hash, or "" when none is configured.
func (s *ProtectionService) Hash(ctx context.Context, categoryID int64) (string, error) {
	rec, err := s.repo.Get(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return rec.PasswordHash, nil
}

// Save applies an administrative protection change for one category.
//
// enabled=false deletes the record, hash included. enabled=true with a
// non-empty password replaces the hash. enabled=true with an empty
// password keeps the current hash; when there is none the call is a
// silent no-op, so a category can never become protected without a
// password.
func (s *ProtectionService) Save(ctx context.Context, categoryID int64, rawPassword string, enabled bool) error {
	if !enabled {
		return s.repo.Delete(ctx, categoryID)
	}

	if rawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		return s.repo.Upsert(ctx, &model.ProtectionRecord{
			CategoryID:   categoryID,
			Enabled:      true,
			PasswordHash: string(hash),
		})
	}

	// blank password: keep the existing hash if there is one
	rec, err := s.repo.Get(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec == nil || rec.PasswordHash == "" {
		return nil
	}
	return s.repo.Upsert(ctx, &model.ProtectionRecord{
		CategoryID:   categoryID,
		Enabled:      true,
		PasswordHash: rec.PasswordHash,
	})
}

// ProtectedCategoryIDs returns the IDs of every protected category.
func (s *ProtectionService) ProtectedCategoryIDs(ctx context.Context) ([]int64, error) {
	recs, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.CategoryID)
	}
	return ids, nil
}

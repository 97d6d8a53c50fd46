package service

import (
	"context"
	"errors"
	"sort"

	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"

	"gorm.io/gorm"
)

// Decision is the outcome of evaluating a category against a session.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionChallenge
)

func (d Decision) String() string {
	if d == DecisionChallenge {
		return "challenge"
	}
	return "allow"
}

// AccessService decides whether a request may see a category, filters
// listings and produces the cache exclusion list.
type AccessService struct {
	protection *ProtectionService
	ledger     *LedgerService
	categories repo.CategoryRepository
	basePath   string
}

func NewAccessService(protection *ProtectionService, ledger *LedgerService, categories repo.CategoryRepository, basePath string) *AccessService {
	return &AccessService{protection: protection, ledger: ledger, categories: categories, basePath: basePath}
}

// Decide evaluates one category for one visitor session: unprotected or
// already unlocked means allow, everything else challenges.
func (s *AccessService) Decide(ctx context.Context, sessionID string, categoryID int64) (Decision, error) {
	protected, err := s.protection.IsProtected(ctx, categoryID)
	if err != nil {
		return DecisionChallenge, err
	}
	if !protected {
		return DecisionAllow, nil
	}
	unlocked, err := s.ledger.IsUnlocked(ctx, sessionID, categoryID)
	if err != nil {
		return DecisionChallenge, err
	}
	if unlocked {
		return DecisionAllow, nil
	}
	return DecisionChallenge, nil
}

// DecideItem evaluates an item that belongs to several categories: the
// item is gated when any of them challenges. Returns the first
// challenging category ID so the caller can prompt for it.
func (s *AccessService) DecideItem(ctx context.Context, sessionID string, categoryIDs []int64) (Decision, int64, error) {
	for _, id := range categoryIDs {
		d, err := s.Decide(ctx, sessionID, id)
		if err != nil {
			return DecisionChallenge, id, err
		}
		if d == DecisionChallenge {
			return DecisionChallenge, id, nil
		}
	}
	return DecisionAllow, 0, nil
}

// HiddenCategoryIDs returns the subset of the given categories that must
// be hidden from listings: protected and not unlocked by this session.
func (s *AccessService) HiddenCategoryIDs(ctx context.Context, sessionID string, categoryIDs []int64) ([]int64, error) {
	protectedIDs, err := s.protection.ProtectedCategoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(protectedIDs) == 0 {
		return []int64{}, nil
	}
	unlockedIDs, err := s.ledger.ListUnlocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	protected := make(map[int64]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}
	unlocked := make(map[int64]struct{}, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = struct{}{}
	}

	hidden := make([]int64, 0)
	for _, id := range categoryIDs {
		if _, ok := protected[id]; !ok {
			continue
		}
		if _, ok := unlocked[id]; ok {
			continue
		}
		hidden = append(hidden, id)
	}
	return hidden, nil
}

// VisibleCategories returns the catalog minus the hidden categories for
// this session, for listing and search views.
func (s *AccessService) VisibleCategories(ctx context.Context, sessionID string) ([]model.Category, error) {
	cats, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	hidden, err := s.HiddenCategoryIDs(ctx, sessionID, ids)
	if err != nil {
		return nil, err
	}
	hiddenSet := make(map[int64]struct{}, len(hidden))
	for _, id := range hidden {
		hiddenSet[id] = struct{}{}
	}
	visible := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		if _, ok := hiddenSet[c.ID]; !ok {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// CacheExclusionPaths returns the URL paths of every protected category,
// with and without a trailing slash, for registration with downstream
// caching layers. Protected pages must never be served from a shared
// cache regardless of who unlocked them.
func (s *AccessService) CacheExclusionPaths(ctx context.Context) ([]string, error) {
	ids, err := s.protection.ProtectedCategoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	paths := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		cat, err := s.categories.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// protection record for a category the catalog no longer has
			continue
		}
		if err != nil {
			return nil, err
		}
		base := s.basePath + "/" + cat.Slug
		for _, p := range []string{base, base + "/"} {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

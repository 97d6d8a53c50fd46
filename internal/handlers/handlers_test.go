package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/villaingsk/woo-protect/internal/clock"
	"github.com/villaingsk/woo-protect/internal/config"
	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/repo"
	"github.com/villaingsk/woo-protect/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gateFixture struct {
	ts  *httptest.Server
	clk *clock.Stub
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	db, err := repo.InitDB("file::memory:")
	require.NoError(t, err)
	// an in-memory sqlite exists per connection; keep the pool at one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		AuthSecret:       "test-secret",
		CategoryBasePath: "/category",
	}
	clk := clock.NewStub(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	protectionRepo := repo.NewProtectionRepository(db)
	unlockRepo := repo.NewUnlockRepository(db)
	settingsRepo := repo.NewSettingsRepository(db)
	categoryRepo := repo.NewCategoryRepository(db)
	adminRepo := repo.NewAdminRepository(db)

	protection := service.NewProtectionService(protectionRepo)
	ledger := service.NewLedgerService(unlockRepo, settingsRepo, clk)
	access := service.NewAccessService(protection, ledger, categoryRepo, cfg.CategoryBasePath)
	verify := service.NewVerifyService(protection, ledger, categoryRepo, settingsRepo, cfg.CategoryBasePath)
	admins := service.NewAdminService(adminRepo)
	settings := service.NewSettingsService(db)

	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)

	h := NewHandler(access, verify, ledger, settings, admins, protection, categoryRepo, logger, cfg)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)

	return &gateFixture{ts: ts, clk: clk}
}

// newClient returns a client with its own cookie jar, i.e. its own
// visitor session (and auth cookie, if it logs in).
func (f *gateFixture) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (f *gateFixture) doJSON(t *testing.T, client *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

// newAdmin registers the bootstrap administrator and returns a client
// holding its auth cookie.
func (f *gateFixture) newAdmin(t *testing.T) *http.Client {
	t.Helper()
	client := f.newClient(t)
	resp, _ := f.doJSON(t, client, http.MethodPost, "/api/admin/register",
		map[string]string{"login": "admin", "password": "adminpass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return client
}

func (f *gateFixture) importCatalog(t *testing.T, admin *http.Client, cats []map[string]any) {
	t.Helper()
	resp, _ := f.doJSON(t, admin, http.MethodPut, "/api/admin/catalog", cats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// protect enables protection for the given categories through the
// administrative save endpoint, the way the settings page does it.
func (f *gateFixture) protect(t *testing.T, admin *http.Client, passwords map[int64]string) {
	t.Helper()

	resp, data := f.doJSON(t, admin, http.MethodGet, "/api/admin/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &page))
	require.NotEmpty(t, page.CSRFToken)

	cats := make(map[string]map[string]any, len(passwords))
	for id, pw := range passwords {
		cats[fmt.Sprintf("%d", id)] = map[string]any{"enabled": true, "password": pw}
	}
	resp, data = f.doJSON(t, admin, http.MethodPost, "/api/admin/settings", map[string]any{
		"settings": map[string]any{
			"lock_screen_title":   "Members Only",
			"lock_screen_message": "Enter the password to continue.",
			"session_duration":    24,
		},
		"categories": cats,
		"csrf_token": page.CSRFToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
}

func assertNoStore(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "no-cache, no-store, must-revalidate, max-age=0", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
}

func TestUnlockFlow(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)

	// locked category challenges
	resp, data := f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assertNoStore(t, resp)
	var challenge struct {
		Decision     string `json:"decision"`
		CategoryID   int64  `json:"category_id"`
		CategoryName string `json:"category_name"`
		Title        string `json:"title"`
		CSRFToken    string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))
	assert.Equal(t, "challenge", challenge.Decision)
	assert.Equal(t, int64(7), challenge.CategoryID)
	assert.Equal(t, "Wine", challenge.CategoryName)
	assert.Equal(t, "Members Only", challenge.Title)
	require.NotEmpty(t, challenge.CSRFToken)

	// unprotected sibling stays open
	resp, data = f.doJSON(t, visitor, http.MethodGet, "/api/categories/8/access", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"allow"`)

	// wrong password: generic failure, still locked
	resp, data = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "guess", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var verdict struct {
		OK          bool   `json:"ok"`
		Message     string `json:"message"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.Unmarshal(data, &verdict))
	assert.False(t, verdict.OK)
	assert.Equal(t, "Incorrect password. Please try again.", verdict.Message)

	resp, _ = f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// correct password unlocks and redirects to the category page
	resp, data = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "sw0rdfish", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &verdict))
	assert.True(t, verdict.OK)
	assert.Equal(t, "Access granted! Redirecting...", verdict.Message)
	assert.Equal(t, "/category/wine/", verdict.RedirectURL)

	resp, _ = f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the unlock expires with the configured session duration
	f.clk.Advance(24*time.Hour + time.Second)
	resp, _ = f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVerifyRejectsBadRequests(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{{"id": 7, "name": "Wine", "slug": "wine"}})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)

	// missing fields
	resp, data := f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "Invalid request. Please try again.")

	// missing anti-forgery token
	resp, data = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "sw0rdfish",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(data), "Invalid request. Please try again.")

	// a token minted for another visitor session is rejected
	stranger := f.newClient(t)
	resp, data = f.doJSON(t, stranger, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var challenge struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))

	resp, _ = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "sw0rdfish", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVerifyUnprotectedCategoryGenericFailure(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)
	resp, data := f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var challenge struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))

	// verifying against an unprotected category must not reveal its state
	resp, data = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 8, "password": "anything", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(data), "Incorrect password. Please try again.")
}

func TestItemAccess(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)

	// item in an open category only
	resp, data := f.doJSON(t, visitor, http.MethodPost, "/api/items/access", map[string]any{
		"category_ids": []int64{8},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"allow"`)

	// item in a locked category is gated even when an open one matches too
	resp, data = f.doJSON(t, visitor, http.MethodPost, "/api/items/access", map[string]any{
		"category_ids": []int64{8, 7},
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var challenge struct {
		CategoryID int64 `json:"category_id"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))
	assert.Equal(t, int64(7), challenge.CategoryID)

	// empty category list is a bad request
	resp, _ = f.doJSON(t, visitor, http.MethodPost, "/api/items/access", map[string]any{
		"category_ids": []int64{},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCatalogHidesLockedCategories(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)
	resp, data := f.doJSON(t, visitor, http.MethodGet, "/api/catalog/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertNoStore(t, resp)
	var cats []struct {
		ID   int64  `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(data, &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "beer", cats[0].Slug)

	// unlock and the category reappears
	resp, data = f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var challenge struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))
	resp, _ = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "sw0rdfish", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = f.doJSON(t, visitor, http.MethodGet, "/api/catalog/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &cats))
	assert.Len(t, cats, 2)
}

func TestCacheExclusions(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)
	resp, data := f.doJSON(t, visitor, http.MethodGet, "/api/cache/exclusions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Paths []string `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"/category/wine", "/category/wine/"}, out.Paths)
}

func TestLogoutDropsUnlocks(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{{"id": 7, "name": "Wine", "slug": "wine"}})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	visitor := f.newClient(t)
	resp, data := f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var challenge struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(data, &challenge))
	resp, _ = f.doJSON(t, visitor, http.MethodPost, "/api/protect/verify", map[string]any{
		"category_id": 7, "password": "sw0rdfish", "csrf_token": challenge.CSRFToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.doJSON(t, visitor, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.doJSON(t, visitor, http.MethodGet, "/api/categories/7/access", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRegisterIsBootstrapOnly(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)

	// anonymous registration is closed once an admin exists
	stranger := f.newClient(t)
	resp, _ := f.doJSON(t, stranger, http.MethodPost, "/api/admin/register",
		map[string]string{"login": "mallory", "password": "pass"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// an authenticated admin can add accounts
	resp, _ = f.doJSON(t, admin, http.MethodPost, "/api/admin/register",
		map[string]string{"login": "second", "password": "pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// duplicate login
	resp, _ = f.doJSON(t, admin, http.MethodPost, "/api/admin/register",
		map[string]string{"login": "admin", "password": "pass"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdminLogin(t *testing.T) {
	f := newGateFixture(t)
	f.newAdmin(t)

	client := f.newClient(t)
	resp, _ := f.doJSON(t, client, http.MethodPost, "/api/admin/login",
		map[string]string{"login": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.doJSON(t, client, http.MethodPost, "/api/admin/login",
		map[string]string{"login": "admin", "password": "adminpass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the cookie from login grants access to the settings page
	resp, _ = f.doJSON(t, client, http.MethodGet, "/api/admin/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	f := newGateFixture(t)
	f.newAdmin(t)

	visitor := f.newClient(t)
	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPost, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/catalog"},
	} {
		resp, _ := f.doJSON(t, visitor, tc.method, tc.path, map[string]any{})
		assert.Equalf(t, http.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestAdminSettingsNeverExposeHashes(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)
	f.importCatalog(t, admin, []map[string]any{
		{"id": 7, "name": "Wine", "slug": "wine"},
		{"id": 8, "name": "Beer", "slug": "beer"},
	})
	f.protect(t, admin, map[int64]string{7: "sw0rdfish"})

	resp, data := f.doJSON(t, admin, http.MethodGet, "/api/admin/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertNoStore(t, resp)

	var page struct {
		Settings struct {
			LockTitle       string `json:"lock_screen_title"`
			SessionDuration int    `json:"session_duration"`
		} `json:"settings"`
		Categories []struct {
			ID      int64 `json:"id"`
			Enabled bool  `json:"enabled"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, "Members Only", page.Settings.LockTitle)
	assert.Equal(t, 24, page.Settings.SessionDuration)
	require.Len(t, page.Categories, 2)
	for _, c := range page.Categories {
		assert.Equal(t, c.ID == 7, c.Enabled)
	}
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "$2a$")
}

func TestImportCatalogValidatesEntries(t *testing.T) {
	f := newGateFixture(t)
	admin := f.newAdmin(t)

	resp, _ := f.doJSON(t, admin, http.MethodPut, "/api/admin/catalog",
		[]map[string]any{{"id": 0, "name": "Broken", "slug": ""}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/villaingsk/woo-protect/internal/config"
	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/model"
	"github.com/villaingsk/woo-protect/internal/repo"
	"github.com/villaingsk/woo-protect/internal/service"

	"go.uber.org/zap"
)

// AdminHandler serves the administrative account and settings endpoints.
type AdminHandler struct {
	Admins     *service.AdminService
	Settings   *service.SettingsService
	Protection *service.ProtectionService
	Categories repo.CategoryRepository
	Logger     *zap.SugaredLogger
	Config     *config.Config
}

func NewAdminHandler(
	admins *service.AdminService,
	settings *service.SettingsService,
	protection *service.ProtectionService,
	categories repo.CategoryRepository,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *AdminHandler {
	return &AdminHandler{
		Admins:     admins,
		Settings:   settings,
		Protection: protection,
		Categories: categories,
		Logger:     logger,
		Config:     cfg,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type settingsDTO struct {
	LockTitle            string `json:"lock_screen_title"`
	LockMessage          string `json:"lock_screen_message"`
	SessionDurationHours int    `json:"session_duration"`
	RedirectURL          string `json:"redirect_url"`
}

type categoryStateDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type saveSettingsRequest struct {
	Settings   settingsDTO `json:"settings"`
	Categories map[string]struct {
		Enabled  bool   `json:"enabled"`
		Password string `json:"password,omitempty"`
	} `json:"categories"`
	CSRFToken string `json:"csrf_token"`
}

// Register creates an administrator account. Open only for the very
// first account; after that an authenticated admin is required.
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	has, err := h.Admins.HasAdmins(r.Context())
	if err != nil {
		h.Logger.Errorw("Register: failed to count admins", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if has {
		if _, ok := middleware.GetAdminIDFromContext(r.Context()); !ok {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
	}

	admin, err := h.Admins.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrLoginTaken):
		http.Error(w, "login already taken", http.StatusConflict)
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := middleware.SetLoginCookie(w, admin.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: failed to set auth cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Login authenticates an administrator and sets the auth cookie.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	admin, err := h.Admins.Login(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := middleware.SetLoginCookie(w, admin.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set auth cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GetSettings returns the current settings and per-category protection
// state. Password hashes are never exposed, only the enabled flag.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetAdminIDFromContext(r.Context()); !ok {
		http.Error(w, "insufficient permissions", http.StatusForbidden)
		return
	}
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	st, err := h.Settings.Get(r.Context())
	if err != nil {
		h.Logger.Errorw("GetSettings: failed to load settings", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	cats, err := h.Categories.ListAll(r.Context())
	if err != nil {
		h.Logger.Errorw("GetSettings: failed to load catalog", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	protectedIDs, err := h.Protection.ProtectedCategoryIDs(r.Context())
	if err != nil {
		h.Logger.Errorw("GetSettings: failed to load protection state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	protected := make(map[int64]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}

	states := make([]categoryStateDTO, 0, len(cats))
	for _, c := range cats {
		_, enabled := protected[c.ID]
		states = append(states, categoryStateDTO{ID: c.ID, Name: c.Name, Enabled: enabled})
	}

	token, err := middleware.NewCSRFToken(h.Config.AuthSecret, sid)
	if err != nil {
		h.Logger.Errorw("GetSettings: failed to issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	middleware.NoStore(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": settingsDTO{
			LockTitle:            st.LockTitle,
			LockMessage:          st.LockMessage,
			SessionDurationHours: st.SessionDurationHours,
			RedirectURL:          st.RedirectURL,
		},
		"categories": states,
		"csrf_token": token,
	})
}

// SaveSettings applies one administrative save: global settings plus
// per-category protection changes, atomically.
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetAdminIDFromContext(r.Context()); !ok {
		http.Error(w, "insufficient permissions", http.StatusForbidden)
		return
	}
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("SaveSettings: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := middleware.CheckCSRFToken(h.Config.AuthSecret, req.CSRFToken, sid); err != nil {
		h.Logger.Warnw("SaveSettings: csrf check failed", "error", err)
		http.Error(w, "invalid anti-forgery token", http.StatusForbidden)
		return
	}

	in := service.SaveAllInput{
		LockTitle:            req.Settings.LockTitle,
		LockMessage:          req.Settings.LockMessage,
		SessionDurationHours: req.Settings.SessionDurationHours,
		RedirectURL:          req.Settings.RedirectURL,
		Categories:           make(map[int64]service.CategorySave, len(req.Categories)),
	}
	for key, c := range req.Categories {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		in.Categories[id] = service.CategorySave{Enabled: c.Enabled, Password: c.Password}
	}

	if err := h.Settings.SaveAll(r.Context(), in); err != nil {
		h.Logger.Errorw("SaveSettings: save failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Settings saved successfully!"})
}

// ImportCatalog replaces the local catalog snapshot with the payload
// from the catalog provider.
func (h *AdminHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetAdminIDFromContext(r.Context()); !ok {
		http.Error(w, "insufficient permissions", http.StatusForbidden)
		return
	}

	var cats []model.Category
	if err := json.NewDecoder(r.Body).Decode(&cats); err != nil {
		h.Logger.Warnw("ImportCatalog: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	for _, c := range cats {
		if c.ID <= 0 || c.Slug == "" {
			http.Error(w, "invalid category entry", http.StatusBadRequest)
			return
		}
	}

	if err := h.Categories.ReplaceAll(r.Context(), cats); err != nil {
		h.Logger.Errorw("ImportCatalog: replace failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(cats)})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/villaingsk/woo-protect/internal/config"
	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/repo"
	"github.com/villaingsk/woo-protect/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// User-facing failure messages stay generic: never reveal whether a
// category exists, is unprotected or is misconfigured.
const (
	msgInvalidRequest = "Invalid request. Please try again."
	msgWrongPassword  = "Incorrect password. Please try again."
	msgAccessGranted  = "Access granted! Redirecting..."
)

// GateHandler serves the visitor-facing access decision and password
// verification endpoints.
type GateHandler struct {
	Access     *service.AccessService
	Verifier   *service.VerifyService
	Ledger     *service.LedgerService
	Settings   *service.SettingsService
	Categories repo.CategoryRepository
	Logger     *zap.SugaredLogger
	Config     *config.Config
}

func NewGateHandler(
	access *service.AccessService,
	verify *service.VerifyService,
	ledger *service.LedgerService,
	settings *service.SettingsService,
	categories repo.CategoryRepository,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *GateHandler {
	return &GateHandler{
		Access:     access,
		Verifier:   verify,
		Ledger:     ledger,
		Settings:   settings,
		Categories: categories,
		Logger:     logger,
		Config:     cfg,
	}
}

type challengeResponse struct {
	Decision     string `json:"decision"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	CSRFToken    string `json:"csrf_token"`
}

type verifyRequest struct {
	CategoryID int64  `json:"category_id"`
	Password   string `json:"password"`
	CSRFToken  string `json:"csrf_token"`
}

type verifyResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CategoryAccess evaluates one category for the visitor session.
func (h *GateHandler) CategoryAccess(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || categoryID <= 0 {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	d, err := h.Access.Decide(r.Context(), sid, categoryID)
	if err != nil {
		h.Logger.Errorw("CategoryAccess: decision failed", "category_id", categoryID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if d == service.DecisionChallenge {
		h.writeChallenge(w, r, sid, categoryID)
		return
	}
	h.writeAllow(w)
}

// ItemAccess evaluates an item that belongs to several categories; the
// item is gated when any of them is locked.
func (h *GateHandler) ItemAccess(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var req struct {
		CategoryIDs []int64 `json:"category_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CategoryIDs) == 0 {
		h.Logger.Warnw("ItemAccess: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	d, challenged, err := h.Access.DecideItem(r.Context(), sid, req.CategoryIDs)
	if err != nil {
		h.Logger.Errorw("ItemAccess: decision failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if d == service.DecisionChallenge {
		h.writeChallenge(w, r, sid, challenged)
		return
	}
	h.writeAllow(w)
}

// Verify checks a submitted password and unlocks the category on success.
func (h *GateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	middleware.NoStore(w)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Verify: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, verifyResponse{OK: false, Message: msgInvalidRequest})
		return
	}
	if req.CategoryID <= 0 || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, verifyResponse{OK: false, Message: msgInvalidRequest})
		return
	}
	if err := middleware.CheckCSRFToken(h.Config.AuthSecret, req.CSRFToken, sid); err != nil {
		h.Logger.Warnw("Verify: csrf check failed", "category_id", req.CategoryID, "error", err)
		writeJSON(w, http.StatusForbidden, verifyResponse{OK: false, Message: msgInvalidRequest})
		return
	}

	redirect, err := h.Verifier.Verify(r.Context(), sid, req.CategoryID, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, verifyResponse{OK: true, Message: msgAccessGranted, RedirectURL: redirect})
	case errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrNotProtected),
		errors.Is(err, service.ErrNoCredential):
		// same generic message for every auth failure
		writeJSON(w, http.StatusUnauthorized, verifyResponse{OK: false, Message: msgWrongPassword})
	default:
		h.Logger.Errorw("Verify: service error", "category_id", req.CategoryID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Logout drops every unlock held by the visitor session.
func (h *GateHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.Ledger.Clear(r.Context(), sid); err != nil {
		h.Logger.Errorw("Logout: failed to clear ledger", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	middleware.NoStore(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *GateHandler) writeAllow(w http.ResponseWriter) {
	// allow is still per-visitor: keep it out of shared caches
	middleware.NoStore(w)
	writeJSON(w, http.StatusOK, map[string]string{"decision": service.DecisionAllow.String()})
}

func (h *GateHandler) writeChallenge(w http.ResponseWriter, r *http.Request, sid string, categoryID int64) {
	middleware.NoStore(w)

	st, err := h.Settings.Get(r.Context())
	if err != nil {
		h.Logger.Errorw("writeChallenge: failed to load settings", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	token, err := middleware.NewCSRFToken(h.Config.AuthSecret, sid)
	if err != nil {
		h.Logger.Errorw("writeChallenge: failed to issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var name string
	if cat, err := h.Categories.GetByID(r.Context(), categoryID); err == nil {
		name = cat.Name
	}

	writeJSON(w, http.StatusForbidden, challengeResponse{
		Decision:     service.DecisionChallenge.String(),
		CategoryID:   categoryID,
		CategoryName: name,
		Title:        st.LockTitle,
		Message:      st.LockMessage,
		CSRFToken:    token,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

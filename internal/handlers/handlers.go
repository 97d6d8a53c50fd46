package handlers

import (
	"github.com/villaingsk/woo-protect/internal/config"
	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/repo"
	"github.com/villaingsk/woo-protect/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler wires the router: middleware chain plus all routes.
func NewHandler(
	access *service.AccessService,
	verify *service.VerifyService,
	ledger *service.LedgerService,
	settings *service.SettingsService,
	admins *service.AdminService,
	protection *service.ProtectionService,
	categories repo.CategoryRepository,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithVisitor)
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	// Handlers
	gate := NewGateHandler(access, verify, ledger, settings, categories, logger, cfg)
	catalog := NewCatalogHandler(access, logger)
	admin := NewAdminHandler(admins, settings, protection, categories, logger, cfg)

	// Visitor-facing gate routes
	r.Get("/api/categories/{id}/access", gate.CategoryAccess)
	r.Post("/api/items/access", gate.ItemAccess)
	r.Post("/api/protect/verify", gate.Verify)
	r.Post("/api/session/logout", gate.Logout)

	// Catalog and cache-layer routes
	r.Get("/api/catalog/categories", catalog.List)
	r.Get("/api/cache/exclusions", catalog.CacheExclusions)

	// Administrative routes
	r.Post("/api/admin/register", admin.Register)
	r.Post("/api/admin/login", admin.Login)
	r.Get("/api/admin/settings", admin.GetSettings)
	r.Post("/api/admin/settings", admin.SaveSettings)
	r.Put("/api/admin/catalog", admin.ImportCatalog)

	return &Handler{Router: r}
}

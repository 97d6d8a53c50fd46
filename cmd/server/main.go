package main

import (
	"net/http"

	"github.com/villaingsk/woo-protect/internal/clock"
	"github.com/villaingsk/woo-protect/internal/config"
	"github.com/villaingsk/woo-protect/internal/handlers"
	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/repo"
	"github.com/villaingsk/woo-protect/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	middleware.SetLogger(sugar)
	middleware.SetSecureCookies(cfg.EnableHTTPS)
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	protectionRepo := repo.NewProtectionRepository(gormDB)
	unlockRepo := repo.NewUnlockRepository(gormDB)
	settingsRepo := repo.NewSettingsRepository(gormDB)
	categoryRepo := repo.NewCategoryRepository(gormDB)
	adminRepo := repo.NewAdminRepository(gormDB)

	protectionSvc := service.NewProtectionService(protectionRepo)
	ledgerSvc := service.NewLedgerService(unlockRepo, settingsRepo, clock.Real{})
	accessSvc := service.NewAccessService(protectionSvc, ledgerSvc, categoryRepo, cfg.CategoryBasePath)
	verifySvc := service.NewVerifyService(protectionSvc, ledgerSvc, categoryRepo, settingsRepo, cfg.CategoryBasePath)
	settingsSvc := service.NewSettingsService(gormDB)
	adminSvc := service.NewAdminService(adminRepo)

	h := handlers.NewHandler(accessSvc, verifySvc, ledgerSvc, settingsSvc, adminSvc, protectionSvc, categoryRepo, sugar, cfg)

	sugar.Infow("Starting server",
		"addr", cfg.RunAddress,
		"category_base_path", cfg.CategoryBasePath,
		"https", cfg.EnableHTTPS,
	)

	if err := http.ListenAndServe(cfg.RunAddress, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

package config

import (
	"flag"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	RunAddress  string `env:"RUN_ADDRESS"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// CategoryBasePath is the public URL prefix of category pages,
	// used to build redirect targets and cache exclusion paths.
	CategoryBasePath string `env:"CATEGORY_BASE_PATH"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags apply only when the env variables are not set
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN (postgres:// URI or sqlite file path)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret for signing auth and anti-forgery tokens")
	flag.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "address to listen on (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.StringVar(&cfg.CategoryBasePath, "category-base-path", cfg.CategoryBasePath, "URL prefix for category pages")

	flag.Parse()

	normalize(cfg)
	return cfg
}

var addrRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)

// normalize fills defaults and drops invalid values.
func normalize(cfg *Config) {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// RunAddress must be "host:port" or ":port"
	if !addrRe.MatchString(cfg.RunAddress) {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.CategoryBasePath == "" {
		cfg.CategoryBasePath = "/category"
	}
	cfg.CategoryBasePath = "/" + strings.Trim(cfg.CategoryBasePath, "/")
}

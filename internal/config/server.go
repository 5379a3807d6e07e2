package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type ServerConfig struct {
	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8080"`
	PublicBaseURL  string   `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	StoreDriver  string `env:"STORE_DRIVER" envDefault:"postgres"`
	PostgresDSN  string `env:"POSTGRES_DSN"`
	SeedDemoGame bool   `env:"SEED_DEMO_GAME" envDefault:"false"`

	AnnounceEnabled     bool   `env:"ANNOUNCE_ENABLED" envDefault:"false"`
	AnnounceTargetsPath string `env:"ANNOUNCE_TARGETS_PATH"`
	AnnounceTargetsJSON string `env:"ANNOUNCE_TARGETS_JSON"`
	AnnounceWorkers     int    `env:"ANNOUNCE_WORKERS" envDefault:"2"`
	AnnounceRetryMax    int    `env:"ANNOUNCE_RETRY_MAX" envDefault:"3"`
	AnnounceRetryBaseMS int    `env:"ANNOUNCE_RETRY_BASE_MS" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return cfg, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

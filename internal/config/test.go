package config

import "github.com/caarlos0/env/v11"

// TestConfig drives the Postgres-backed tests, which skip when the DSN is
// unset. KeepSchema leaves each test's throwaway schema behind so failed
// runs can be inspected.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
	KeepSchema      bool   `env:"TEST_KEEP_SCHEMA" envDefault:"false"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}

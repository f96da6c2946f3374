// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with github.com/caarlos0/env/v11 tags:
//
//	type Config struct {
//		StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"memory"`
//		MaxSkew       time.Duration `env:"AUTH_MAX_SKEW" envDefault:"5m"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Load parses each type once and caches the result, so packages can load the
// same struct independently without re-reading the environment. The first
// Load also reads ./.env through github.com/joho/godotenv; LoadEnv reads
// explicit files and overrides existing variables.
//
// ForceReloadConfig and ResetCache bypass the cache and exist mainly for tests.
package config

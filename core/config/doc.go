// Package config provides type-safe environment variable loading with
// per-type caching using Go generics. A .env file, when present, is
// loaded once on first use; parsing is handled by caarlos0/env.
//
// Basic usage:
//
//	type ClientConfig struct {
//		BaseURL string        `env:"FILESHARE_BASE_URL,required"`
//		Timeout time.Duration `env:"FILESHARE_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each configuration type is parsed once per process; later Load calls
// for the same type return the cached value.
package config

package client

import "time"

// Config holds the client settings, loadable through core/config.
type Config struct {
	// BaseURL is the backend API root, e.g. "https://host/api".
	BaseURL string `env:"FILESHARE_BASE_URL,required"`

	// Timeout applies to every request unless the context is stricter.
	Timeout time.Duration `env:"FILESHARE_TIMEOUT" envDefault:"30s"`

	// Token is an optional bearer credential. Empty means anonymous.
	Token string `env:"FILESHARE_TOKEN"`
}

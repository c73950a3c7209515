package session

import "time"

// Config holds session manager configuration.
type Config struct {
	// TTL is added to the creation time (or to "now" on an explicit
	// extension) to compute expires_at.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	// CacheSize bounds the process-local session cache.
	CacheSize int `env:"SESSION_CACHE_SIZE" envDefault:"10000"`

	// PageAccessInterval is the minimum gap between recorded
	// page_access events per token. Bounds audit write volume on the
	// hot path; set to 0 to record every validation.
	PageAccessInterval time.Duration `env:"SESSION_PAGE_ACCESS_INTERVAL" envDefault:"1m"`

	// SweepInterval enables the optional background sweep that flips
	// expired rows so admin aggregates stay accurate between
	// validations (0 to disable). Validation detects expiry lazily on
	// its own, so the sweep is never required for correctness.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"0"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:                time.Hour,
		CacheSize:          10000,
		PageAccessInterval: time.Minute,
		SweepInterval:      0,
	}
}

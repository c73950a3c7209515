package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer indicates a nil config struct was passed.
	ErrNilPointer = errors.New("config: nil pointer provided")

	// ErrParsingConfig indicates environment parsing failed.
	ErrParsingConfig = errors.New("config: failed to parse environment")
)

var loadDotEnv sync.Once

// Load populates the given struct from environment variables according
// to its env tags. The default .env file is loaded once per process;
// a missing file is not an error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use for
// configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

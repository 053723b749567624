package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings; time.Duration
// fields accept Go duration strings such as "5s" or "30m".
//
// Example:
//
//	type Config struct {
//	    Port         int           `env:"HTTP_PORT" envDefault:"8080"`
//	    WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv populates the process environment from the given .env files
// (".env" when none are given). Variables already set in the environment
// win. Missing files are not an error; the returned bool reports whether
// at least one file was read.
func LoadDotEnv(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	loaded := false
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = true
	}
	return loaded, nil
}

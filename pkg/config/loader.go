package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct using `env` and `envDefault` tags:
//
//	type Config struct {
//	    Port     int    `env:"PORT" envDefault:"5000"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
// When environment is given, its entries are used instead of the process
// environment.
func Load(cfg any, environment ...map[string]string) error {
	opts := env.Options{}
	if len(environment) > 0 {
		merged := make(map[string]string)
		for _, m := range environment {
			for k, v := range m {
				merged[k] = v
			}
		}
		opts.Environment = merged
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

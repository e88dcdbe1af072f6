package qstash

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig is the configuration read from the environment.
type EnvConfig struct {
	Token             string        `env:"QSTASH_TOKEN"`
	URL               string        `env:"QSTASH_URL" envDefault:"https://qstash.upstash.io"`
	Timeout           time.Duration `env:"QSTASH_TIMEOUT" envDefault:"30s"`
	CurrentSigningKey string        `env:"QSTASH_CURRENT_SIGNING_KEY"`
	NextSigningKey    string        `env:"QSTASH_NEXT_SIGNING_KEY"`
}

// LoadEnv loads files (default ".env") into the process environment without
// overriding variables that are already set, then parses EnvConfig. Missing
// files are ignored.
func LoadEnv(files ...string) (*EnvConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Options converts the environment configuration to client options.
func (c *EnvConfig) Options() []Option {
	opts := []Option{WithToken(c.Token), WithTimeout(c.Timeout)}
	if c.URL != "" {
		opts = append(opts, WithBaseURL(c.URL))
	}
	return opts
}

// NewClientFromEnv creates a client from the environment. opts are applied
// after the environment and take precedence.
func NewClientFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(append(cfg.Options(), opts...)...)
}

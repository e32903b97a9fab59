// config_env.go loads client configuration from the process environment.

package faultline

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables read by LoadConfig, e.g.
// FAULTLINE_ACCESS_TOKEN, FAULTLINE_ENVIRONMENT, FAULTLINE_BATCH_SIZE.
const envPrefix = "FAULTLINE_"

// envConfig mirrors Config with koanf/validate tags for the env loader.
type envConfig struct {
	AccessToken     string   `koanf:"access_token" validate:"required"`
	Host            string   `koanf:"host"`
	Environment     string   `koanf:"environment"`
	Framework       string   `koanf:"framework"`
	Root            string   `koanf:"root"`
	Branch          string   `koanf:"branch"`
	CodeVersion     string   `koanf:"code_version"`
	Handler         string   `koanf:"handler" validate:"omitempty,oneof=inline deferred timer"`
	HandlerInterval int      `koanf:"handler_interval" validate:"omitempty,gte=1"` // seconds
	BatchSize       int      `koanf:"batch_size" validate:"omitempty,gte=1"`
	ScrubHeaders    []string `koanf:"scrub_headers"`
	ScrubFields     []string `koanf:"scrub_fields"`
}

// LoadConfig builds a Config from FAULTLINE_-prefixed environment variables.
// A .env file in the working directory is honored when present. Unset
// options keep the NewConfig defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var ec envConfig
	if err := k.Unmarshal("", &ec); err != nil {
		return nil, fmt.Errorf("unmarshal environment config: %w", err)
	}

	if err := validator.New().Struct(&ec); err != nil {
		return nil, fmt.Errorf("validate environment config: %w", err)
	}

	cfg := NewConfig(ec.AccessToken)
	cfg.Host = ec.Host
	cfg.Environment = ec.Environment
	cfg.Framework = ec.Framework
	cfg.Root = ec.Root
	cfg.Branch = ec.Branch
	cfg.CodeVersion = ec.CodeVersion
	if ec.Handler != "" {
		cfg.Handler = HandlerMode(ec.Handler)
	}
	if ec.HandlerInterval > 0 {
		cfg.HandlerInterval = time.Duration(ec.HandlerInterval) * time.Second
	}
	if ec.BatchSize > 0 {
		cfg.BatchSize = ec.BatchSize
	}
	if ec.ScrubHeaders != nil {
		cfg.ScrubHeaders = ec.ScrubHeaders
	}
	if ec.ScrubFields != nil {
		cfg.ScrubFields = ec.ScrubFields
	}
	return cfg, nil
}

// Package config loads the process environment and the milestone/teams
// input file, validating both before any query is issued.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env is the process-environment configuration. The GitHub token is the
// single credential the whole run uses; its absence is fatal.
type Env struct {
	Token        string `envconfig:"GH_TOKEN" validate:"required"`
	DelaySeconds int    `split_words:"true" default:"3" validate:"gte=0"`
}

// Delay returns the minimum interval between per-team queries.
func (e Env) Delay() time.Duration {
	return time.Duration(e.DelaySeconds) * time.Second
}

// LoadEnv reads a .env file when one is present, then the environment.
// Variables other than GH_TOKEN carry the TEAM_COMMITS prefix.
func LoadEnv(logger *log.Logger) (Env, error) {
	if err := godotenv.Load(); err != nil {
		logger.Printf("dotenv: %v", err)
	}

	var env Env
	if err := envconfig.Process("team_commits", &env); err != nil {
		return env, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validator.New().Struct(env); err != nil {
		return env, fmt.Errorf("environment validation failed: %w", err)
	}
	return env, nil
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	DataDir  string `env:"ODELAB_DATA" envDefault:".odelab"`
	LogLevel string `env:"ODELAB_LOG_LEVEL" envDefault:"info"`
}

func ParseEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &e, nil
}

// Package config contém as configurações da CLI lidas do ambiente e o
// arquivo TOML opcional que sobrescreve a declaração da stack.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env é lido das variáveis de ambiente. Flags da linha de comando têm precedência.
type Env struct {
	Environment string `env:"DLFMWRK_ENVIRONMENT" envDefault:"dev"`
	ConfigFile  string `env:"DLFMWRK_CONFIG"`
	Format      string `env:"DLFMWRK_FORMAT" envDefault:"yaml"`
	LogLevel    string `env:"DLFMWRK_LOG_LEVEL" envDefault:"info"`
	Region      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccountID   string `env:"AWS_ACCOUNT_ID" envDefault:"000000000000"`
}

// LoadEnv lê Env das variáveis de ambiente do processo.
func LoadEnv() (Env, error) {
	return parseEnv(env.Options{})
}

// LoadEnvFrom lê Env a partir de vars em vez do ambiente do processo.
func LoadEnvFrom(vars map[string]string) (Env, error) {
	return parseEnv(env.Options{Environment: vars})
}

func parseEnv(opts env.Options) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return e, nil
}

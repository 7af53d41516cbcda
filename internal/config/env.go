package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds process-level settings, loaded from the environment.
type Server struct {
	Addr       string `env:"ADDR" envDefault:":8080"`
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	Storage    string `env:"STORAGE" envDefault:"sqlite"` // sqlite | file
	UserID     string `env:"USER_ID" envDefault:"default"`
	ConfigPath string `env:"CONFIG_PATH"`
	ForgeURL   string `env:"FORGE_URL"`
}

// ServerFromEnv loads server settings from environment variables.
func ServerFromEnv() (Server, error) {
	var s Server
	if err := env.Parse(&s); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Storage != "sqlite" && s.Storage != "file" {
		return Server{}, fmt.Errorf("STORAGE must be sqlite or file, got %q", s.Storage)
	}
	return s, nil
}

package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	APIKeyHash     string `envconfig:"API_KEY_HASH" default:""`
	AssetDir       string `envconfig:"ASSET_DIR" default:"./data/assets"`
	OutputDir      string `envconfig:"OUTPUT_DIR" default:"./data/renders"`
	FontDir        string `envconfig:"FONT_DIR" default:""`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

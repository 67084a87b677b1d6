package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración de la consola.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	TenantID       string        `env:"TENANT_ID" envDefault:"1"`
	LoginPath      string        `env:"LOGIN_PATH" envDefault:"/login"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"file"`
	SessionDir     string        `env:"SESSION_DIR"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DatabaseURL string `env:"DATABASE_URL"`

	HTTPPort      string        `env:"HTTP_PORT" envDefault:"8090"`
	MockAPIPort   string        `env:"MOCK_API_PORT" envDefault:"8080"`
	MockJWTSecret string        `env:"MOCK_JWT_SECRET" envDefault:"dev-secret"`
	MockAdminPass string        `env:"MOCK_ADMIN_PASSWORD" envDefault:"admin123"`
	MockTokenTTL  time.Duration `env:"MOCK_TOKEN_TTL" envDefault:"2h"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = defaultSessionDir()
	}
	return &cfg, nil
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".admin-console"
	}
	return filepath.Join(home, ".admin-console")
}

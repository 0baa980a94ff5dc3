package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	OTelEnabled        bool          `env:"OTEL_ENABLED" envDefault:"true"`
	OTelServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"horizonte-forms-api"`
	LogLevel           slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	CEPBaseURL         string        `env:"CEP_BASE_URL" envDefault:"https://viacep.com.br/ws/"`
	CEPTimeout         time.Duration `env:"CEP_TIMEOUT" envDefault:"10s"`
	RedisURL           string        `env:"REDIS_URL"`
	CEPCacheTTL        time.Duration `env:"CEP_CACHE_TTL" envDefault:"10h"`
	ValidationDebounce time.Duration `env:"VALIDATION_DEBOUNCE" envDefault:"500ms"`
}

func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.CEPBaseURL) == "" {
		return fmt.Errorf("CEP_BASE_URL must not be empty")
	}
	if c.CEPTimeout <= 0 {
		return fmt.Errorf("CEP_TIMEOUT must be positive, got %s", c.CEPTimeout)
	}
	if c.CEPCacheTTL <= 0 {
		return fmt.Errorf("CEP_CACHE_TTL must be positive, got %s", c.CEPCacheTTL)
	}
	if c.ValidationDebounce < 0 {
		return fmt.Errorf("VALIDATION_DEBOUNCE must not be negative, got %s", c.ValidationDebounce)
	}
	return nil
}

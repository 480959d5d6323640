package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Port     string `mapstructure:"PORT"`

	DBUrl         string `mapstructure:"DB_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	BackendURL          string        `mapstructure:"BACKEND_URL"`
	BackendTimeout      time.Duration `mapstructure:"BACKEND_TIMEOUT"`
	BackendServiceToken string        `mapstructure:"BACKEND_SERVICE_TOKEN"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`

	GatewayPublicKey   string `mapstructure:"GATEWAY_PUBLIC_KEY"`
	GatewayCallbackURL string `mapstructure:"GATEWAY_CALLBACK_URL"`

	MinFundingAmount  int64         `mapstructure:"MIN_FUNDING_AMOUNT"`
	ResendCooldown    time.Duration `mapstructure:"RESEND_COOLDOWN"`
	ReconcileSchedule string        `mapstructure:"RECONCILE_SCHEDULE"`
	PageSize          int           `mapstructure:"PAGE_SIZE"`
}

var defaults = map[string]any{
	"APP_ENV":               "production",
	"LOG_LEVEL":             "info",
	"PORT":                  "8080",
	"DB_URL":                "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"BACKEND_URL":           "http://localhost:5000/api",
	"BACKEND_TIMEOUT":       "30s",
	"BACKEND_SERVICE_TOKEN": "",
	"JWT_SECRET":            "",
	"GATEWAY_PUBLIC_KEY":    "",
	"GATEWAY_CALLBACK_URL":  "",
	"MIN_FUNDING_AMOUNT":    100,
	"RESEND_COOLDOWN":       "60s",
	"RECONCILE_SCHEDULE":    "@every 5m",
	"PAGE_SIZE":             12,
}

// LoadConfig reads path (a .env file, optional) and the environment.
// Environment variables win.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.BackendURL == "" {
		missing = append(missing, "BACKEND_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.MinFundingAmount <= 0 {
		return fmt.Errorf("MIN_FUNDING_AMOUNT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Package config loads the storefront configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Host transports.
const (
	TransportStdio  = "stdio"
	TransportRedis  = "redis"
	TransportMemory = "memory"
)

// Config is the root of storefront.yaml.
type Config struct {
	App  domain.Identity `yaml:"app"`
	Log  LogConfig       `yaml:"log"`
	Host HostConfig      `yaml:"host"`
	HTTP HTTPConfig      `yaml:"http"`
	MCP  MCPConfig       `yaml:"mcp"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// HostConfig selects how the view reaches its host.
type HostConfig struct {
	Transport string      `yaml:"transport" validate:"oneof=stdio redis memory"`
	Redis     RedisConfig `yaml:"redis"`

	// Initial is the snapshot served by the in-process host.
	Initial domain.HostContext `yaml:"initial"`
}

// RedisConfig configures the Redis host transport.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0,lte=15"`
	Prefix   string `yaml:"prefix"`
}

// HTTPConfig configures the view server.
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// MCPConfig configures the MCP server surface.
type MCPConfig struct {
	// BaseURL is advertised by the SSE transport.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Addr    string `yaml:"addr" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		App: domain.DefaultIdentity,
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
		Host: HostConfig{
			Transport: TransportMemory,
			Redis:     RedisConfig{Addr: "localhost:6379", Prefix: "storefront:host:"},
			Initial:   domain.HostContext{Theme: domain.ThemeLight},
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		MCP:  MCPConfig{Addr: ":8081"},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is empty; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks field rules and cross-field constraints.
func (c Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			fe := ves[0]
			return fmt.Errorf("%w: %s failed validation for tag '%s'", ErrInvalidConfig, fieldName(fe), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Host.Transport == TransportRedis && c.Host.Redis.Addr == "" {
		return fmt.Errorf("%w: host.redis.addr is required for the redis transport", ErrInvalidConfig)
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}

// Level returns the parsed log level.
func (c Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger builds the application logger described by the config.
func (c Config) Logger() *slog.Logger {
	return logging.New(c.Level(), logging.Format(c.Log.Format))
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Redis    Redis   `yaml:"redis"`
	Session  Session `yaml:"session"`
	Ngrok    Ngrok   `yaml:"ngrok"`
}

type HTTP struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"localhost"`
	Port int    `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Storage struct {
	Backend     string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	SessionsDir string `yaml:"sessions-dir" env:"SESSIONS_DIR" env-default:"sessions"`
	ConfigsDir  string `yaml:"configs-dir" env:"CONFIG_DIR" env-default:"configs"`
}

type Redis struct {
	Host string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL  time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"0s"`
}

type Session struct {
	MaxAge          time.Duration `yaml:"max-age" env:"SESSION_MAX_AGE" env-default:"24h"`
	CleanupInterval time.Duration `yaml:"cleanup-interval" env:"SESSION_CLEANUP_INTERVAL" env-default:"1h"`
}

type Ngrok struct {
	Enabled   bool   `yaml:"enabled" env:"NGROK_ENABLED" env-default:"false"`
	AuthToken string `yaml:"authtoken" env:"NGROK_AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"NGROK_DOMAIN"`
}

// Load reads path when it exists and the environment otherwise. Environment
// variables override file values either way.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return config, config.Validate()
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return config, config.Validate()
}

// MustLoad - load all configurations from config.yml and the environment.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	var errs []error
	switch that.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", that.Storage.Backend))
	}
	if that.HTTP.Port < 0 || that.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http port %d out of range", that.HTTP.Port))
	}
	if that.Session.CleanupInterval <= 0 {
		errs = append(errs, errors.New("session cleanup interval must be positive"))
	}
	if _, ok := levels[strings.ToLower(that.LogLevel)]; !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", that.LogLevel))
	}
	return errors.Join(errs...)
}

func (that *HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", that.Host, that.Port)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Usage describes the environment variables Load understands
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the JSON logger for the configured level
func (that *Config) NewLogger(w io.Writer) *slog.Logger {
	level, ok := levels[strings.ToLower(that.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Package config loads soractl settings and sets up logging.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StoreKind selects the key-value backend for the prompt cache.
type StoreKind string

const (
	StoreFile      StoreKind = "file"
	StoreMemory    StoreKind = "memory"
	StoreRedis     StoreKind = "redis"
	StoreSurrealDB StoreKind = "surrealdb"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Config holds all configuration values.
type Config struct {
	// Provider
	APIKey       string
	APIBaseURL   string
	SiteURL      string
	Username     string
	Organization string
	HTTPTimeout  time.Duration // zero keeps the transport default

	// Prompt cache
	Store         StoreKind
	StoreDir      string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Downloads
	DownloadDir string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the optional YAML config file. Keys mirror the environment
// variables in lower case.
type fileConfig struct {
	APIKey       string `yaml:"openai_api_key"`
	APIBaseURL   string `yaml:"openai_base_url"`
	SiteURL      string `yaml:"sora_base_url"`
	Username     string `yaml:"username"`
	Organization string `yaml:"organization"`
	HTTPTimeout  string `yaml:"http_timeout"`

	Store         string `yaml:"store"`
	StoreDir      string `yaml:"store_dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisPrefix   string `yaml:"redis_prefix"`

	SurrealDB struct {
		URL       string `yaml:"url"`
		Namespace string `yaml:"namespace"`
		Database  string `yaml:"database"`
		User      string `yaml:"user"`
		Pass      string `yaml:"pass"`
		AuthLevel string `yaml:"auth_level"`
	} `yaml:"surrealdb"`

	DownloadDir string `yaml:"download_dir"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
}

// Load reads configuration. Precedence, lowest first: defaults, the YAML file
// (SORA_CONFIG or $XDG_CONFIG_HOME/soractl/config.yaml), .env in the working
// directory, environment variables.
func Load() (Config, error) {
	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	path, explicit := configPath()
	fc, err := readFile(path)
	if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	timeout, err := parseDuration(getEnv("SORA_HTTP_TIMEOUT", fc.HTTPTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("SORA_HTTP_TIMEOUT: %w", err)
	}
	store, err := parseStore(getEnv("SORA_STORE", or(fc.Store, string(StoreFile))))
	if err != nil {
		return Config{}, err
	}

	return Config{
		APIKey:       strings.TrimSpace(getEnv("OPENAI_API_KEY", fc.APIKey)),
		APIBaseURL:   getEnv("OPENAI_BASE_URL", or(fc.APIBaseURL, "https://api.openai.com/v1")),
		SiteURL:      getEnv("SORA_BASE_URL", or(fc.SiteURL, "https://sora.chatgpt.com")),
		Username:     strings.TrimPrefix(getEnv("SORA_USERNAME", fc.Username), "@"),
		Organization: getEnv("SORA_OPENAI_ORG", fc.Organization),
		HTTPTimeout:  timeout,

		Store:         store,
		StoreDir:      getEnv("SORA_STORE_DIR", or(fc.StoreDir, defaultStoreDir())),
		RedisAddr:     getEnv("SORA_REDIS_ADDR", or(fc.RedisAddr, "localhost:6379")),
		RedisPassword: getEnv("SORA_REDIS_PASSWORD", fc.RedisPassword),
		RedisPrefix:   getEnv("SORA_REDIS_PREFIX", or(fc.RedisPrefix, "soractl:")),

		SurrealDBURL:       getEnv("SURREALDB_URL", or(fc.SurrealDB.URL, "ws://localhost:8000/rpc")),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", or(fc.SurrealDB.Namespace, "soractl")),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", or(fc.SurrealDB.Database, "prompts")),
		SurrealDBUser:      getEnv("SURREALDB_USER", or(fc.SurrealDB.User, "root")),
		SurrealDBPass:      getEnv("SURREALDB_PASS", or(fc.SurrealDB.Pass, "root")),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", or(fc.SurrealDB.AuthLevel, "root")),

		DownloadDir: getEnv("SORA_DOWNLOAD_DIR", fc.DownloadDir),

		LogFile:  getEnv("SORA_LOG_FILE", or(fc.LogFile, filepath.Join(os.TempDir(), "soractl.log"))),
		LogLevel: parseLogLevel(getEnv("SORA_LOG_LEVEL", or(fc.LogLevel, "WARN"))),
	}, nil
}

// RequireAPIKey fails when no API key is configured.
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func configPath() (string, bool) {
	if p := os.Getenv("SORA_CONFIG"); p != "" {
		return p, true
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, "soractl", "config.yaml"), false
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, err
	}
	return fc, nil
}

func defaultStoreDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "soractl")
	}
	return ".soractl"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func or(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func parseStore(s string) (StoreKind, error) {
	switch k := StoreKind(strings.ToLower(strings.TrimSpace(s))); k {
	case StoreFile, StoreMemory, StoreRedis, StoreSurrealDB:
		return k, nil
	default:
		return "", fmt.Errorf("SORA_STORE: unknown store %q (want file, memory, redis or surrealdb)", s)
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

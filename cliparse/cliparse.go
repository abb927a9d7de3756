// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present, before env fallback.
const DefaultEnvFile = ".env"

type Config struct {
	DatabaseURL  string
	DatabaseType string
	CacheType    string
	CachePath    string
	RedisAddr    string
	UserID       string
	FirstName    string
	InitData     string
	BotToken     string
	BotUsername  string
	Timezone     string
	PersistDelay time.Duration
	APIURL       string
	APIKey       string
	EnvFile      string

	persistDelayMS int
}

// UsesAPI reports whether polls live behind the REST API instead of SQL.
func (c Config) UsesAPI() bool {
	return c.APIURL != ""
}

// NewFlagSet binds every setting to a flag set. Call Resolve after parsing.
func NewFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)

	// Remote store (can be CLI args or env)
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.APIURL, "api", "", "REST API base URL (replaces the database)")

	// Local cache
	fs.StringVar(&cfg.CacheType, "cache", "", "Cache type (sqlite, file, redis or memory)")
	fs.StringVar(&cfg.CachePath, "cache-path", "", "Cache SQLite file or directory")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for the redis cache")

	// Identity and planner defaults
	fs.StringVar(&cfg.UserID, "user", "", "Host user id")
	fs.StringVar(&cfg.FirstName, "name", "", "Host user first name")
	fs.StringVar(&cfg.BotUsername, "bot", "", "Bot username for invite links")
	fs.StringVar(&cfg.Timezone, "timezone", "", "Default planner timezone")
	fs.IntVar(&cfg.persistDelayMS, "persist-delay", 0, "State save debounce in milliseconds")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.InitData, "init-data", "", "Signed launch init data (prefer env)")
	fs.StringVar(&cfg.BotToken, "bot-token", "", "Bot token for init data checks (prefer env)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "REST API key (prefer env)")

	fs.StringVar(&cfg.EnvFile, "env-file", DefaultEnvFile, "Env file loaded before env fallback")
	return fs
}

func fallback(dst *string, key, def string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
	if *dst == "" {
		*dst = def
	}
	*dst = strings.TrimSpace(*dst)
}

// Resolve fills unset values from the env file, then the environment, then
// defaults, and validates the result.
func Resolve(cfg *Config) error {
	if cfg.EnvFile != "" {
		// Load never overrides variables that are already set.
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	fallback(&cfg.APIURL, "API_URL", "")
	fallback(&cfg.APIKey, "API_KEY", "")
	fallback(&cfg.DatabaseURL, "DATABASE_URL", "")
	fallback(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseURL == "" && cfg.APIURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env, or -api for a REST backend)")
	}

	fallback(&cfg.CacheType, "CACHE_TYPE", "sqlite")
	fallback(&cfg.CachePath, "CACHE_PATH", "planner-cache.db")
	fallback(&cfg.RedisAddr, "REDIS_ADDR", "localhost:6379")

	fallback(&cfg.UserID, "PLANNER_USER_ID", "")
	fallback(&cfg.FirstName, "PLANNER_USER_NAME", "")
	fallback(&cfg.InitData, "TMA_INIT_DATA", "")
	fallback(&cfg.BotToken, "BOT_TOKEN", "")
	fallback(&cfg.BotUsername, "BOT_USERNAME", "")
	fallback(&cfg.Timezone, "PLANNER_TIMEZONE", "")
	if cfg.InitData != "" && cfg.BotToken == "" {
		return errors.New("BOT_TOKEN required to verify init data")
	}

	if cfg.persistDelayMS == 0 {
		if s := os.Getenv("PERSIST_DELAY_MS"); s != "" {
			ms, err := strconv.Atoi(s)
			if err != nil {
				return errors.New("invalid PERSIST_DELAY_MS env variable")
			}
			cfg.persistDelayMS = ms
		}
	}
	if cfg.persistDelayMS < 0 {
		return errors.New("persist delay must not be negative")
	}
	if cfg.persistDelayMS > 0 {
		cfg.PersistDelay = time.Duration(cfg.persistDelayMS) * time.Millisecond
	}
	return nil
}

// ParseFlags parses args and resolves the remaining settings from the
// environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	fs := NewFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := Resolve(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

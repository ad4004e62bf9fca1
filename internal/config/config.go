package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFallbackSaveURL is the standalone admin save server tried when the
// primary save target fails.
const DefaultFallbackSaveURL = "http://localhost:8001/save-data"

type Config struct {
	Port         int
	DataFile     string
	DocumentName string

	// Optional backends. Empty means not configured.
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	AdminPassword string
	BackupOnSave  bool

	// Synthetic trades for accounts without a trade log.
	SynthTrades bool
	SynthSeed   uint64

	// Remote save targets used by the CLI push command.
	SavePrimaryURL  string
	SaveFallbackURL string
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		DataFile:        getEnvDefault("DATA_FILE", "data/accounts.json"),
		DocumentName:    getEnvDefault("DOCUMENT_NAME", "accounts"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 30*time.Second),
		AdminPassword:   getEnvDefault("ADMIN_PASSWORD", "admin123"),
		BackupOnSave:    getEnvBool("BACKUP_ON_SAVE", false),
		SynthTrades:     getEnvBool("SYNTH_TRADES", false),
		SynthSeed:       getEnvUint("SYNTH_SEED", 1),
		SavePrimaryURL:  os.Getenv("SAVE_PRIMARY_URL"),
		SaveFallbackURL: getEnvDefault("SAVE_FALLBACK_URL", DefaultFallbackSaveURL),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

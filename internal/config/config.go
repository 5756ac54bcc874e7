package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/secrets"
	"gopkg.in/yaml.v3"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendMemory   = "memory"
)

type Config struct {
	DatabaseURL     string
	AppEnv          string
	HTTPAddr        string
	ShutdownTimeout int // seconds

	YatcoBaseURL   string
	YatcoToken     string
	KeyringAccount string
	ListingBaseURL string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 disables
	RateBurst      int

	SyncMode     models.SyncMode
	SyncSchedule string
	BatchSize    int
	MaxVessels   int // 0 means all
	LockFile     string

	StoreBackend string
	SQLitePath   string

	CacheTTL   time.Duration
	IDListTTL  time.Duration
	VesselTTL  time.Duration
	StaleAfter time.Duration
}

// fileConfig is the optional YAML overlay. Environment variables win over it.
type fileConfig struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		ListingBaseURL string  `yaml:"listing_base_url"`
		Timeout        string  `yaml:"timeout"`
		RateLimit      float64 `yaml:"rate_limit"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"api"`
	Sync struct {
		Mode       string `yaml:"mode"`
		Schedule   string `yaml:"schedule"`
		BatchSize  int    `yaml:"batch_size"`
		MaxVessels int    `yaml:"max_vessels"`
		LockFile   string `yaml:"lock_file"`
		CacheTTL   string `yaml:"cache_ttl"`
		IDListTTL  string `yaml:"id_list_ttl"`
		VesselTTL  string `yaml:"vessel_ttl"`
		StaleAfter string `yaml:"stale_after"`
	} `yaml:"sync"`
	Store struct {
		Backend    string `yaml:"backend"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"store"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

func defaults() *Config {
	return &Config{
		AppEnv:          "development",
		HTTPAddr:        ":8080",
		ShutdownTimeout: 30,
		YatcoBaseURL:    "https://api.yatcoboss.com/api/v1",
		KeyringAccount:  "default",
		ListingBaseURL:  "https://www.yatco.com/yacht/",
		RequestTimeout:  30 * time.Second,
		RateLimit:       5,
		RateBurst:       5,
		SyncMode:        models.ModeCPT,
		SyncSchedule:    "@every 1h",
		BatchSize:       20,
		LockFile:        "/tmp/yatco-sync.lock",
		StoreBackend:    StoreBackendPostgres,
		SQLitePath:      "yatco-sync.db",
		CacheTTL:        30 * time.Minute,
		IDListTTL:       6 * time.Hour,
		VesselTTL:       time.Hour,
		StaleAfter:      30 * time.Minute,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("YATCO_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" && cfg.StoreBackend == StoreBackendPostgres {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.YatcoToken == "" {
		token, err := secrets.Token(cfg.KeyringAccount)
		if err != nil {
			fmt.Printf("Warning: keychain lookup failed: %v\n", err)
		}
		cfg.YatcoToken = token
	}
	if cfg.YatcoToken == "" {
		fmt.Println("Warning: YATCO_API_TOKEN not set, sync runs will fail until it is configured")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.YatcoBaseURL, fc.API.BaseURL)
	setString(&c.ListingBaseURL, fc.API.ListingBaseURL)
	if fc.API.RateLimit > 0 {
		c.RateLimit = fc.API.RateLimit
	}
	setInt(&c.RateBurst, fc.API.RateBurst)

	if fc.Sync.Mode != "" {
		c.SyncMode = models.SyncMode(fc.Sync.Mode)
	}
	setString(&c.SyncSchedule, fc.Sync.Schedule)
	setInt(&c.BatchSize, fc.Sync.BatchSize)
	setInt(&c.MaxVessels, fc.Sync.MaxVessels)
	setString(&c.LockFile, fc.Sync.LockFile)

	setString(&c.StoreBackend, fc.Store.Backend)
	setString(&c.SQLitePath, fc.Store.SQLitePath)
	setString(&c.HTTPAddr, fc.HTTP.Addr)

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"api.timeout", fc.API.Timeout, &c.RequestTimeout},
		{"sync.cache_ttl", fc.Sync.CacheTTL, &c.CacheTTL},
		{"sync.id_list_ttl", fc.Sync.IDListTTL, &c.IDListTTL},
		{"sync.vessel_ttl", fc.Sync.VesselTTL, &c.VesselTTL},
		{"sync.stale_after", fc.Sync.StaleAfter, &c.StaleAfter},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)

	c.YatcoBaseURL = getEnv("YATCO_API_BASE_URL", c.YatcoBaseURL)
	c.YatcoToken = getEnv("YATCO_API_TOKEN", c.YatcoToken)
	c.KeyringAccount = getEnv("YATCO_KEYRING_ACCOUNT", c.KeyringAccount)
	c.ListingBaseURL = getEnv("YATCO_LISTING_BASE_URL", c.ListingBaseURL)

	c.SyncMode = models.SyncMode(getEnv("SYNC_MODE", string(c.SyncMode)))
	c.SyncSchedule = getEnv("SYNC_SCHEDULE", c.SyncSchedule)
	c.LockFile = getEnv("SYNC_LOCK_FILE", c.LockFile)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	var err error
	if c.BatchSize, err = getEnvInt("SYNC_BATCH_SIZE", c.BatchSize); err != nil {
		return err
	}
	if c.MaxVessels, err = getEnvInt("SYNC_MAX_VESSELS", c.MaxVessels); err != nil {
		return err
	}
	if c.CacheTTL, err = getEnvDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.IDListTTL, err = getEnvDuration("ID_LIST_TTL", c.IDListTTL); err != nil {
		return err
	}
	if c.VesselTTL, err = getEnvDuration("VESSEL_TTL", c.VesselTTL); err != nil {
		return err
	}
	if c.StaleAfter, err = getEnvDuration("STALE_AFTER", c.StaleAfter); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	mode, ok := models.ParseSyncMode(string(c.SyncMode))
	if !ok {
		return fmt.Errorf("invalid SYNC_MODE %q", c.SyncMode)
	}
	c.SyncMode = mode

	switch c.StoreBackend {
	case StoreBackendPostgres, StoreBackendSQLite, StoreBackendMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.MaxVessels < 0 {
		return fmt.Errorf("SYNC_MAX_VESSELS must not be negative, got %d", c.MaxVessels)
	}

	// a zero ttl means "never expires" to the cache store
	durations := []struct {
		key   string
		value time.Duration
	}{
		{"CACHE_TTL", c.CacheTTL},
		{"ID_LIST_TTL", c.IDListTTL},
		{"VESSEL_TTL", c.VesselTTL},
		{"STALE_AFTER", c.StaleAfter},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.key, d.value)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if value > 0 {
		*dst = value
	}
}

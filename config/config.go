package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultListingURL is the Afi Tower search page filtered by price, floor and area.
const DefaultListingURL = "https://afitower.ru/?sort=price&sortBy=asc&square%5B%5D=20&square%5B%5D=116" +
	"&stock=all&floor%5B%5D=2&floor%5B%5D=50&price%5B%5D=11&price%5B%5D=45&numberFlat=" +
	"&pageView=params&view=all&page=1&offset=0&showMore=true"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListingURL string
	OutputPath string
	LogPath    string
	LogLevel   string

	PageLoadWait    time.Duration
	ClickSettleWait time.Duration
	WaitTimeout     time.Duration

	// Strict aborts the whole run on the first bad detail page.
	Strict bool

	ChromeBin string
	SiteFile  string
	Site      Site

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
// Site calibration is read from SITE_CONFIG when it is set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		ListingURL: getEnv("LISTING_URL", DefaultListingURL),
		OutputPath: getEnv("OUTPUT_PATH", "result.xlsx"),
		LogPath:    getEnv("LOG_PATH", "logging.log"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		PageLoadWait:    getEnvDuration("PAGE_LOAD_WAIT", 3*time.Second),
		ClickSettleWait: getEnvDuration("CLICK_SETTLE_WAIT", 5*time.Second),
		WaitTimeout:     getEnvDuration("WAIT_TIMEOUT", 5*time.Second),

		Strict: getEnvBool("STRICT", true),

		ChromeBin: getEnv("CHROME_BIN", ""),
		SiteFile:  getEnv("SITE_CONFIG", ""),
		Site:      DefaultSite(),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "units_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	if cfg.SiteFile != "" {
		if err := LoadSite(cfg.SiteFile, &cfg.Site); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("3s", "500ms") or a bare number of milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms := getEnvInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

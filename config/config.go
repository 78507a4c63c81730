package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Mongo configuration
	MongoURI      string
	MongoDatabase string

	// Redis configuration (record publisher)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration (cross-process rate-limit blocks)
	MemcacheAddr string

	// Crawler configuration
	CrawlInterval time.Duration
	PageCap       int
	StartPage     int

	// Base URLs for the supplier sites
	TunisianetURL string
	MytekURL      string
	SpacenetURL   string
	ScoopURL      string

	// Rendered-page fetch service for JS-heavy themes (empty disables it)
	ChromeAddr string

	// HTTP listeners
	MetricsAddr string
	CatalogAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "0"))
	pageCap, _ := strconv.Atoi(getEnv("PAGE_CAP", "100"))
	startPage, _ := strconv.Atoi(getEnv("START_PAGE", "1"))

	return Config{
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "pricewatch"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "products"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		PageCap:              pageCap,
		StartPage:            startPage,
		TunisianetURL:        getEnv("TUNISIANET_URL", "https://www.tunisianet.com.tn"),
		MytekURL:             getEnv("MYTEK_URL", "https://www.mytek.tn"),
		SpacenetURL:          getEnv("SPACENET_URL", "https://spacenet.tn"),
		ScoopURL:             getEnv("SCOOP_URL", "https://www.scoop.com.tn"),
		ChromeAddr:           getEnv("CHROME_ADDR", ""),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		CatalogAddr:          getEnv("CATALOG_ADDR", ":8080"),
		Environment:          getEnv("PRICEWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE must not be empty")
	}
	if c.PageCap < 1 {
		return fmt.Errorf("PAGE_CAP must be at least 1, got %d", c.PageCap)
	}
	if c.StartPage < 1 {
		return fmt.Errorf("START_PAGE must be at least 1, got %d", c.StartPage)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

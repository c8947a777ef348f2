package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	SessionSecret string
	DatabaseURL   string
	RedisURL      string

	// Quote provider (Finnhub-shaped REST API). Absence of the key degrades
	// the price-refresh feature; it never prevents startup.
	QuoteAPIURL string
	QuoteAPIKey string

	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	// Price-refresh scheduler tunables (defaults per RefreshDefaults).
	RefreshInterval   time.Duration
	RefreshBatchSize  int
	RefreshBatchDelay time.Duration

	// Alert evaluator period.
	AlertInterval time.Duration
}

const (
	defaultRefreshInterval   = 2 * time.Minute
	defaultRefreshBatchSize  = 5
	defaultRefreshBatchDelay = 500 * time.Millisecond
	defaultAlertInterval     = 5 * time.Minute
)

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	quoteURL := viper.GetString("QUOTE_API_URL")
	if quoteURL == "" {
		quoteURL = "https://finnhub.io/api/v1"
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		QuoteAPIURL:         quoteURL,
		QuoteAPIKey:         viper.GetString("FINNHUB_API_KEY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		RefreshInterval:     durationOr("PRICE_REFRESH_INTERVAL", defaultRefreshInterval),
		RefreshBatchSize:    intOr("PRICE_REFRESH_BATCH_SIZE", defaultRefreshBatchSize),
		RefreshBatchDelay:   durationOr("PRICE_REFRESH_BATCH_DELAY", defaultRefreshBatchDelay),
		AlertInterval:       durationOr("ALERT_CHECK_INTERVAL", defaultAlertInterval),
	}, nil
}

func durationOr(key string, def time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func intOr(key string, def int) int {
	if n := viper.GetInt(key); n > 0 {
		return n
	}
	return def
}

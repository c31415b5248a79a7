package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int
	RequestTimeout time.Duration
	LogLevel       slog.Level

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	YahooBaseURL    string
	QuarterLimit    int
	ExchangeSuffix  string
	UpstreamTries   int
	UpstreamTimeout time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	CSVPath     string
	CatalogPath string
}

// DatabaseEnabled reports whether a postgres watchlist is configured.
// Without DB_HOST the dashboard keeps the watchlist in memory.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

var defaults = map[string]interface{}{
	"port":             8080,
	"request_timeout":  60 * time.Second,
	"log_level":        "info",
	"db_port":          "5432",
	"db_user":          "postgres",
	"db_password":      "password",
	"db_name":          "postgres",
	"db_sslmode":       "disable",
	"yahoo_base_url":   "https://query1.finance.yahoo.com",
	"quarter_limit":    10,
	"exchange_suffix":  ".NS",
	"upstream_tries":   3,
	"upstream_timeout": 20 * time.Second,
	"gemini_model":     "gemini-1.5-flash",
	"gemini_base_url":  "https://generativelanguage.googleapis.com",
}

// LoadConfig reads .env (if present), then the optional CONFIG_PATH file,
// then environment variables, which take precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("config_path"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:           v.GetInt("port"),
		RequestTimeout: v.GetDuration("request_timeout"),

		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),

		YahooBaseURL:    v.GetString("yahoo_base_url"),
		QuarterLimit:    v.GetInt("quarter_limit"),
		ExchangeSuffix:  v.GetString("exchange_suffix"),
		UpstreamTries:   v.GetInt("upstream_tries"),
		UpstreamTimeout: v.GetDuration("upstream_timeout"),

		GeminiAPIKey:  v.GetString("gemini_api_key"),
		GeminiModel:   v.GetString("gemini_model"),
		GeminiBaseURL: v.GetString("gemini_base_url"),

		CSVPath:     v.GetString("csv_path"),
		CatalogPath: v.GetString("catalog_path"),
	}

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, validateConfig(cfg)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d is out of range [1, 65535]", cfg.Port)
	}
	if cfg.QuarterLimit <= 0 {
		return errors.New("invalid quarter_limit")
	}
	if cfg.UpstreamTries <= 0 {
		return errors.New("invalid upstream_tries")
	}
	if cfg.RequestTimeout <= 0 || cfg.UpstreamTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if cfg.ExchangeSuffix != "" && !strings.HasPrefix(cfg.ExchangeSuffix, ".") {
		return fmt.Errorf("exchange_suffix %q must start with a dot", cfg.ExchangeSuffix)
	}
	return nil
}

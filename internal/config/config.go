// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`
	// SeedDemoData populates an empty development database with a demo
	// social mesh at startup. Ignored in production.
	SeedDemoData bool `mapstructure:"SEED_DEMO_DATA"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	// Policy knobs for the analytical core. The defaults mirror the product's
	// historical behavior but are deliberately configurable.
	GraphMaxDepth        int     `mapstructure:"GRAPH_MAX_DEPTH"`
	ThreadMaxDepth       int     `mapstructure:"THREAD_MAX_DEPTH"`
	RecommendLimit       int     `mapstructure:"RECOMMEND_LIMIT"`
	RecommendMutualW     float64 `mapstructure:"RECOMMEND_MUTUAL_WEIGHT"`
	RecommendPostW       float64 `mapstructure:"RECOMMEND_POST_WEIGHT"`
	RecommendFollowerW   float64 `mapstructure:"RECOMMEND_FOLLOWER_WEIGHT"`
	TxnMaxRetries        int     `mapstructure:"TXN_MAX_RETRIES"`
	TxnRetryBackoffMs    int     `mapstructure:"TXN_RETRY_BACKOFF_MS"`
	SearchDefaultLimit   int     `mapstructure:"SEARCH_DEFAULT_LIMIT"`
	FeedRecentWindowDays int     `mapstructure:"FEED_RECENT_WINDOW_DAYS"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8480")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "weave")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SEED_DEMO_DATA", false)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	viper.SetDefault("GRAPH_MAX_DEPTH", 6)
	viper.SetDefault("THREAD_MAX_DEPTH", 10)
	viper.SetDefault("RECOMMEND_LIMIT", 50)
	viper.SetDefault("RECOMMEND_MUTUAL_WEIGHT", 10.0)
	viper.SetDefault("RECOMMEND_POST_WEIGHT", 0.5)
	viper.SetDefault("RECOMMEND_FOLLOWER_WEIGHT", 0.1)
	viper.SetDefault("TXN_MAX_RETRIES", 3)
	viper.SetDefault("TXN_RETRY_BACKOFF_MS", 25)
	viper.SetDefault("SEARCH_DEFAULT_LIMIT", 20)
	viper.SetDefault("FEED_RECENT_WINDOW_DAYS", 7)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.GraphMaxDepth < 1 {
		return errors.New("GRAPH_MAX_DEPTH must be at least 1")
	}
	if c.ThreadMaxDepth < 1 {
		return errors.New("THREAD_MAX_DEPTH must be at least 1")
	}
	if c.RecommendLimit < 1 {
		return errors.New("RECOMMEND_LIMIT must be at least 1")
	}
	if c.TxnMaxRetries < 1 {
		return errors.New("TXN_MAX_RETRIES must be at least 1")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}

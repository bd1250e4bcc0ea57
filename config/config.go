package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Slack configuration.
	SlackBotToken string `mapstructure:"SLACK_BOT_TOKEN"`
	WebhookPath   string `mapstructure:"WEBHOOK_PATH"`

	// Yelp Fusion configuration.
	YelpClientSecret string        `mapstructure:"YELP_CLIENT_SECRET"`
	YelpAPIURL       string        `mapstructure:"YELP_API_URL"`
	SearchTimeout    time.Duration `mapstructure:"SEARCH_TIMEOUT"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Dialogue configuration.
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	MaxConfirmRetries int           `mapstructure:"MAX_CONFIRM_RETRIES"`

	// HTTP shell assets.
	StaticDir string `mapstructure:"STATIC_DIR"`
	ViewsDir  string `mapstructure:"VIEWS_DIR"`
}

var AppConfig Config

var (
	ErrMissingBotToken   = errors.New("SLACK_BOT_TOKEN is required")
	ErrMissingYelpSecret = errors.New("YELP_CLIENT_SECRET is required")
)

func LoadConfig() {
	// A .env file is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	setDefaults(viper.GetViper())

	// PORT is what most hosting platforms export.
	_ = viper.BindEnv("APP_PORT", "APP_PORT", "PORT")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3001")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("SLACK_BOT_TOKEN", "")
	v.SetDefault("WEBHOOK_PATH", "/slack/receive")
	v.SetDefault("YELP_CLIENT_SECRET", "")
	v.SetDefault("YELP_API_URL", "https://api.yelp.com/v3")
	v.SetDefault("SEARCH_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("MAX_CONFIRM_RETRIES", 0)
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("VIEWS_DIR", "views")
}

// Validate reports the first missing credential. Both are required to start.
func (c Config) Validate() error {
	if c.SlackBotToken == "" {
		return ErrMissingBotToken
	}
	if c.YelpClientSecret == "" {
		return ErrMissingYelpSecret
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

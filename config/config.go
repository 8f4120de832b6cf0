package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storage.
	MongoURL    string `mapstructure:"MONGO_URL"`
	PostgresDSN string `mapstructure:"POSTGRES_DSN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisRateDB     int    `mapstructure:"REDIS_RATE_DB"`
	RedisReminderDB int    `mapstructure:"REDIS_REMINDER_DB"`

	// Firebase.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Push token format. The bounds follow the provider's current token shape
	// and must stay configurable so a provider format change is a config push,
	// not a release.
	PushTokenMinLen    int    `mapstructure:"PUSH_TOKEN_MIN_LEN"`
	PushTokenMaxLen    int    `mapstructure:"PUSH_TOKEN_MAX_LEN"`
	PushSandboxMode    bool   `mapstructure:"PUSH_SANDBOX_MODE"`
	PushSandboxPrefix  string `mapstructure:"PUSH_SANDBOX_PREFIX"`
	DispatchMaxRetries int    `mapstructure:"DISPATCH_MAX_RETRIES"`

	// Outbound rate limiting (per recipient key).
	RateLimitMax        int  `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindowSecs int  `mapstructure:"RATE_LIMIT_WINDOW_SECS"`
	RateLimitMaxWaitMs  int  `mapstructure:"RATE_LIMIT_MAX_WAIT_MS"`
	RateLimitFailOpen   bool `mapstructure:"RATE_LIMIT_FAIL_OPEN"`

	// Inbound HTTP rate limiting.
	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Feed retention.
	NotificationTTLDays int `mapstructure:"NOTIFICATION_TTL_DAYS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	viper.SetDefault("POSTGRES_DSN", "host=localhost user=remindly dbname=remindly sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_RATE_DB", 1)
	viper.SetDefault("REDIS_REMINDER_DB", 2)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("PUSH_TOKEN_MIN_LEN", 140)
	viper.SetDefault("PUSH_TOKEN_MAX_LEN", 200)
	viper.SetDefault("PUSH_SANDBOX_MODE", false)
	viper.SetDefault("PUSH_SANDBOX_PREFIX", "test-")
	viper.SetDefault("DISPATCH_MAX_RETRIES", 3)
	viper.SetDefault("RATE_LIMIT_MAX", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECS", 60)
	viper.SetDefault("RATE_LIMIT_MAX_WAIT_MS", 5000)
	viper.SetDefault("RATE_LIMIT_FAIL_OPEN", true)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("NOTIFICATION_TTL_DAYS", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

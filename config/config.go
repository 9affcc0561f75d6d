package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config enumerates every recognized option and its default. Anything the
// service reads at runtime lives here; nothing is merged ad hoc elsewhere.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Mongo (drafts, tours).
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB     int    `mapstructure:"REDIS_SESSION_DB"`
	RedisDedupeDB      int    `mapstructure:"REDIS_DEDUPE_DB"`
	RedisReplayQueueDB int    `mapstructure:"REDIS_REPLAY_QUEUE_DB"`

	// Scheduling provider selection and endpoints.
	ProviderVariant      string `mapstructure:"PROVIDER_VARIANT"` // "slotwise" or "tourdesk"
	SlotwiseBaseURL      string `mapstructure:"SLOTWISE_BASE_URL"`
	SlotwiseAPIKey       string `mapstructure:"SLOTWISE_API_KEY"`
	SlotwiseMaxGroupSize int    `mapstructure:"SLOTWISE_MAX_GROUP_SIZE"`
	TourdeskBaseURL      string `mapstructure:"TOURDESK_BASE_URL"`
	TourdeskAPIKey       string `mapstructure:"TOURDESK_API_KEY"`
	ProviderTimeoutSec   int    `mapstructure:"PROVIDER_TIMEOUT_SEC"`

	// Booking rules.
	BookingLeadTimeMin    int `mapstructure:"BOOKING_LEAD_TIME_MIN"`
	BookingMaxAdvanceDays int `mapstructure:"BOOKING_MAX_ADVANCE_DAYS"`
	SessionTTLMin         int `mapstructure:"SESSION_TTL_MIN"`

	// Monitoring.
	MonitorEventCapacity int     `mapstructure:"MONITOR_EVENT_CAPACITY"`
	HealthHealthyMaxPct  float64 `mapstructure:"HEALTH_HEALTHY_MAX_PCT"`
	HealthDegradedMaxPct float64 `mapstructure:"HEALTH_DEGRADED_MAX_PCT"`

	// Offline replay.
	ReplayIntervalSec    int `mapstructure:"REPLAY_INTERVAL_SEC"`
	ConnectivityProbeSec int `mapstructure:"CONNECTIVITY_PROBE_SEC"`

	// Ops dashboard access.
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	OpsAPIKeyHash string `mapstructure:"OPS_API_KEY_HASH"` // bcrypt hash of the dashboard key
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

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "vltava")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_DEDUPE_DB", 1)
	viper.SetDefault("REDIS_REPLAY_QUEUE_DB", 2)
	viper.SetDefault("PROVIDER_VARIANT", "slotwise")
	viper.SetDefault("SLOTWISE_BASE_URL", "https://api.slotwise.example.com")
	viper.SetDefault("SLOTWISE_API_KEY", "")
	viper.SetDefault("SLOTWISE_MAX_GROUP_SIZE", 20)
	viper.SetDefault("TOURDESK_BASE_URL", "https://tourdesk.example.com/api/v2")
	viper.SetDefault("TOURDESK_API_KEY", "")
	viper.SetDefault("PROVIDER_TIMEOUT_SEC", 10)
	viper.SetDefault("BOOKING_LEAD_TIME_MIN", 60)
	viper.SetDefault("BOOKING_MAX_ADVANCE_DAYS", 365)
	viper.SetDefault("SESSION_TTL_MIN", 30)
	viper.SetDefault("MONITOR_EVENT_CAPACITY", 1000)
	viper.SetDefault("HEALTH_HEALTHY_MAX_PCT", 10.0)
	viper.SetDefault("HEALTH_DEGRADED_MAX_PCT", 25.0)
	viper.SetDefault("REPLAY_INTERVAL_SEC", 120)
	viper.SetDefault("CONNECTIVITY_PROBE_SEC", 30)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("OPS_API_KEY_HASH", "")

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

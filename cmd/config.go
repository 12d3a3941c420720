package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"fleet/internal/pkg/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	LogLevel  string
	LogFormat string

	JWTSecret string

	KafkaBrokers             string
	KafkaDeliveryEventsTopic string
	KafkaTrackingTopic       string
	KafkaPublishQueueSize    int
	KafkaPublishTimeout      time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LatestPositionTTL time.Duration

	TrackingRetentionDays     int
	TrackingRetentionSchedule string

	RelaySubscriberBuffer int
	ShutdownTimeout       time.Duration
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables take precedence.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.HTTPPort = cast.ToString(getOrReturnDefault("HTTP_PORT", "8080"))

	cfg.DBHost = cast.ToString(getOrReturnDefault("DB_HOST", "localhost"))
	cfg.DBPort = cast.ToString(getOrReturnDefault("DB_PORT", "5432"))
	cfg.DBUser = cast.ToString(getOrReturnDefault("DB_USER", "fleet"))
	cfg.DBPassword = cast.ToString(getOrReturnDefault("DB_PASSWORD", ""))
	cfg.DBName = cast.ToString(getOrReturnDefault("DB_NAME", "fleet"))
	cfg.DBSslMode = cast.ToString(getOrReturnDefault("DB_SSLMODE", "disable"))

	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = cast.ToString(getOrReturnDefault("LOG_FORMAT", "json"))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", ""))

	cfg.KafkaBrokers = cast.ToString(getOrReturnDefault("KAFKA_BROKERS", ""))
	cfg.KafkaDeliveryEventsTopic = cast.ToString(getOrReturnDefault("KAFKA_DELIVERY_EVENTS_TOPIC", "fleet.delivery-events"))
	cfg.KafkaTrackingTopic = cast.ToString(getOrReturnDefault("KAFKA_TRACKING_TOPIC", "fleet.tracking"))
	cfg.KafkaPublishQueueSize = cast.ToInt(getOrReturnDefault("KAFKA_PUBLISH_QUEUE_SIZE", 1024))
	cfg.KafkaPublishTimeout = cast.ToDuration(getOrReturnDefault("KAFKA_PUBLISH_TIMEOUT", "5s"))

	cfg.RedisAddr = cast.ToString(getOrReturnDefault("REDIS_ADDR", ""))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))
	cfg.LatestPositionTTL = cast.ToDuration(getOrReturnDefault("LATEST_POSITION_TTL", "10m"))

	cfg.TrackingRetentionDays = cast.ToInt(getOrReturnDefault("TRACKING_RETENTION_DAYS", 30))
	cfg.TrackingRetentionSchedule = cast.ToString(getOrReturnDefault("TRACKING_RETENTION_SCHEDULE", "0 0 3 * * *"))

	cfg.RelaySubscriberBuffer = cast.ToInt(getOrReturnDefault("RELAY_SUBSCRIBER_BUFFER", 64))
	cfg.ShutdownTimeout = cast.ToDuration(getOrReturnDefault("SHUTDOWN_TIMEOUT", "15s"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var err error
	if c.JWTSecret == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("JWT_SECRET"))
	}
	if c.TrackingRetentionDays <= 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("TRACKING_RETENTION_DAYS", c.TrackingRetentionDays, 1, "unbounded"))
	}
	if c.RelaySubscriberBuffer <= 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("RELAY_SUBSCRIBER_BUFFER", c.RelaySubscriberBuffer, 1, "unbounded"))
	}
	if c.ShutdownTimeout <= 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("SHUTDOWN_TIMEOUT", c.ShutdownTimeout, "1ns", "unbounded"))
	}
	return err
}

// DatabaseURL is the postgres:// form used by the migrator and the GORM driver.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%s", c.DBHost, c.DBPort),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

func (c Config) TrackingRetention() time.Duration {
	return time.Duration(c.TrackingRetentionDays) * 24 * time.Hour
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

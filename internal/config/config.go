package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr      string
	AuthJWTSecret string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Scheduler SchedulerConfig
}

// SchedulerConfig controls the policy job cadences.
type SchedulerConfig struct {
	RunInterval            time.Duration
	JobTimeout             time.Duration
	CooldownSweepInterval  time.Duration
	TimeDecayInterval      time.Duration
	DeviationInterval      time.Duration
	TierEvaluationInterval time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "platewise"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "platewise"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Scheduler: SchedulerConfig{
			RunInterval:            getenvDuration("SCHEDULER_RUN_INTERVAL", time.Minute),
			JobTimeout:             getenvDuration("SCHEDULER_JOB_TIMEOUT", 10*time.Minute),
			CooldownSweepInterval:  getenvDuration("SCHEDULER_COOLDOWN_SWEEP_INTERVAL", 10*time.Minute),
			TimeDecayInterval:      getenvDuration("SCHEDULER_TIME_DECAY_INTERVAL", 24*time.Hour),
			DeviationInterval:      getenvDuration("SCHEDULER_DEVIATION_INTERVAL", 24*time.Hour),
			TierEvaluationInterval: getenvDuration("SCHEDULER_TIER_EVALUATION_INTERVAL", 24*time.Hour),
		},
	}
}

// Module wires configuration loading.
var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

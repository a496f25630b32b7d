package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int
	Env  string
	DB   struct {
		Dsn            string
		MaxOpenConns   int
		MaxIdleTime    time.Duration
		MigrateOnStart bool
	}
	Redis struct {
		Url          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}
	Holds struct {
		DefaultTTL time.Duration
		MaxTTL     time.Duration
	}
	Sweeper struct {
		Interval time.Duration
	}
	Amqp struct {
		Url      string
		Exchange string
	}
	Stripe struct {
		SecretKey     string
		WebhookSecret string
		SuccessUrl    string
		FailureUrl    string
		Currency      string
	}
	OtelCollectorUrl string
	DisplayVersion   bool
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// Parse reads flags from args. Every flag defaults to the matching environment
// variable, so a .env file can provide the whole configuration.
func Parse(name string, args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet(name, flag.ContinueOnError)

	flags.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flags.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")

	flags.StringVar(&cfg.DB.Dsn, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN (empty uses the in-memory store)")
	flags.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	flags.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")
	flags.BoolVar(&cfg.DB.MigrateOnStart, "migrate-on-start", envBool("MIGRATE_ON_START", false), "Apply database migrations at startup")

	flags.StringVar(&cfg.Redis.Url, "redis-url", envString("REDIS_URL", ""), "Redis address (empty disables Redis)")
	flags.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	flags.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	flags.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	flags.DurationVar(&cfg.Holds.DefaultTTL, "hold-ttl", envDuration("HOLD_TTL", 10*time.Minute), "Default seat hold duration")
	flags.DurationVar(&cfg.Holds.MaxTTL, "hold-max-ttl", envDuration("HOLD_MAX_TTL", 30*time.Minute), "Maximum seat hold duration")
	flags.DurationVar(&cfg.Sweeper.Interval, "sweep-interval", envDuration("SWEEP_INTERVAL", time.Minute), "Expiration sweep interval")

	flags.StringVar(&cfg.Amqp.Url, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL (empty logs booking events)")
	flags.StringVar(&cfg.Amqp.Exchange, "amqp-exchange", envString("AMQP_EXCHANGE", "bookings"), "RabbitMQ exchange for booking events")

	flags.StringVar(&cfg.Stripe.SecretKey, "stripe-key", envString("STRIPE_KEY", ""), "Stripe secret key")
	flags.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", envString("STRIPE_WEBHOOK_SECRET", ""), "Stripe webhook secret")
	flags.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", envString("STRIPE_SUCCESS_URL", "https://example.com/success.html"), "Stripe payment success page")
	flags.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", envString("STRIPE_FAILURE_URL", "https://example.com/failure.html"), "Stripe payment failure page")
	flags.StringVar(&cfg.Stripe.Currency, "currency", envString("CURRENCY", "vnd"), "Settlement currency")

	flags.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	flags.BoolVar(&cfg.DisplayVersion, "version", false, "Display version and exit")

	err := flags.Parse(args)
	if err != nil {
		return Config{}, err
	}

	if cfg.Holds.DefaultTTL <= 0 || cfg.Holds.MaxTTL < cfg.Holds.DefaultTTL {
		return Config{}, errors.New("hold-ttl must be positive and not exceed hold-max-ttl")
	}

	if cfg.Sweeper.Interval <= 0 {
		return Config{}, errors.New("sweep-interval must be positive")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

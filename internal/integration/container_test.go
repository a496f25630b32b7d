package integration_test

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/metinatakli/showtime-booking-engine/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const containerStartup = 60 * time.Second

type PostgresContainer struct {
	Container        *postgres.PostgresContainer
	ConnectionString string
}

type RedisContainer struct {
	Container *tcredis.RedisContainer
	Options   *redis.Options
}

// startPostgres runs a throwaway Postgres and applies the embedded schema.
// Readiness waits for a real query, since the server restarts once after
// initdb.
func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx, dbImageName,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
					dbUser, dbPassword, host, port.Port(), dbName)
			}).WithStartupTimeout(containerStartup),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, terminateOnError(container, fmt.Errorf("postgres connection string: %w", err))
	}

	err = migrations.Up(dsn)
	if err != nil {
		return nil, terminateOnError(container, fmt.Errorf("apply migrations: %w", err))
	}

	return &PostgresContainer{Container: container, ConnectionString: dsn}, nil
}

func startRedis(ctx context.Context) (*RedisContainer, error) {
	container, err := tcredis.Run(ctx, cacheImageName)
	if err != nil {
		return nil, fmt.Errorf("start redis: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return nil, terminateOnError(container, fmt.Errorf("redis connection string: %w", err))
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, terminateOnError(container, fmt.Errorf("parse redis url %q: %w", uri, err))
	}

	return &RedisContainer{Container: container, Options: opts}, nil
}

func terminateOnError(container testcontainers.Container, err error) error {
	if termErr := testcontainers.TerminateContainer(container); termErr != nil {
		return fmt.Errorf("%w (terminate: %v)", err, termErr)
	}

	return err
}

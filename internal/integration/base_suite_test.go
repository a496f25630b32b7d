package integration_test

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/metinatakli/showtime-booking-engine/internal/availability"
	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/metinatakli/showtime-booking-engine/internal/repository"
	"github.com/metinatakli/showtime-booking-engine/internal/sweeper"
	"github.com/metinatakli/showtime-booking-engine/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

// TestApp wires the real Postgres-backed components around a fake clock.
type TestApp struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Clock       *clockwork.FakeClock
	Resolver    *availability.Resolver
	Holds       *hold.Manager
	Coordinator *booking.Coordinator
	Sweeper     *sweeper.Sweeper
}

func newTestApp(db *pgxpool.Pool, rdb *redis.Client) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	clk := clockwork.NewFakeClockAt(testutil.Now)

	catalogRepo := repository.NewPostgresCatalogRepository(db)
	holdRepo := repository.NewPostgresHoldRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	resolver := availability.NewResolver(repository.NewPostgresAvailabilityRepository(db), clk)
	holds := hold.NewManager(catalogRepo, holdRepo, resolver, clk, hold.WithLogger(logger))
	coordinator := booking.NewCoordinator(
		repository.NewPostgresTransactor(db),
		catalogRepo,
		bookingRepo,
		holdRepo,
		resolver,
		clk,
		booking.WithLogger(logger),
	)

	sw, err := sweeper.New(coordinator, holds,
		sweeper.WithLogger(logger),
		sweeper.WithLocker(sweeper.NewRedisLocker(rdb)),
		sweeper.WithClock(clk),
	)
	if err != nil {
		return nil, err
	}

	return &TestApp{
		DB:          db,
		Redis:       rdb,
		Clock:       clk,
		Resolver:    resolver,
		Holds:       holds,
		Coordinator: coordinator,
		Sweeper:     sw,
	}, nil
}

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := startPostgres(ctx)
	if err != nil {
		s.T().Skipf("failed to start container: %s", err)
	}
	s.dbContainer = postgresContainer

	redisContainer, err := startRedis(ctx)
	if err != nil {
		s.T().Skipf("failed to start container: %s", err)
	}
	s.cacheContainer = redisContainer

	db, err := pgxpool.New(ctx, postgresContainer.ConnectionString)
	if err != nil {
		s.T().Fatalf("cannot open database pool: %s", err)
	}

	rdb := redis.NewClient(redisContainer.Options)

	testApp, err := newTestApp(db, rdb)
	if err != nil {
		s.T().Fatalf("cannot initialize app: %s", err)
	}

	s.app = testApp
}

func (s *BaseSuite) SetupTest() {
	// Every test starts from testutil.Now on a fresh clock.
	testApp, err := newTestApp(s.app.DB, s.app.Redis)
	s.Require().NoError(err)
	s.app = testApp

	resetDatabase(s.T(), s.app.DB)
	seedCatalog(s.T(), s.app.DB)

	s.Require().NoError(s.app.Redis.FlushAll(context.Background()).Err())
}

func (s *BaseSuite) TearDownSuite() {
	if s.app != nil {
		s.app.DB.Close()
		s.app.Redis.Close()
	}

	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}

	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

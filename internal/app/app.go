package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/metinatakli/showtime-booking-engine/internal/availability"
	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/config"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/events"
	"github.com/metinatakli/showtime-booking-engine/internal/handler"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/metinatakli/showtime-booking-engine/internal/payment"
	"github.com/metinatakli/showtime-booking-engine/internal/repository"
	"github.com/metinatakli/showtime-booking-engine/internal/sweeper"
	appvalidator "github.com/metinatakli/showtime-booking-engine/internal/validator"
	"github.com/metinatakli/showtime-booking-engine/internal/vcs"
	"github.com/metinatakli/showtime-booking-engine/migrations"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config.Config
	logger         *slog.Logger
	clock          clockwork.Clock
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	health         *handler.HealthcheckHandler

	catalog  domain.CatalogRepository
	resolver seatResolver
	holds    holdService
	bookings bookingService
	payments domain.PaymentProvider
	sweeper  sweepRunner
}

// store groups the repositories of one backend.
type store struct {
	catalog      domain.CatalogRepository
	availability domain.AvailabilityRepository
	holds        domain.HoldRepository
	bookings     domain.BookingRepository
	tx           domain.Transactor
	// ping is nil for the in-memory store.
	ping         func(ctx context.Context) error
	close        func()
}

func Run() error {
	err := config.LoadDotEnv(".env")
	if err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.DisplayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	app := &application{
		config:    cfg,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		clock:     clockwork.NewRealClock(),
		validator: appvalidator.NewValidator(),
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	st, err := newStore(cfg, app.logger)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	app.sessionManager = newSessionManager(redisClient)

	dependencies := []handler.Dependency{}
	if st.ping != nil {
		dependencies = append(dependencies, handler.Dependency{Name: "postgres", Ping: st.ping})
	}
	if redisClient != nil {
		dependencies = append(dependencies, handler.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	app.health = handler.NewHealthcheckHandler(cfg, dependencies...)

	publisher, closePublisher, err := newEventPublisher(cfg, app.logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	resolver := availability.NewResolver(st.availability, app.clock)

	holdManager := hold.NewManager(st.catalog, st.holds, resolver, app.clock,
		hold.WithDefaultTTL(cfg.Holds.DefaultTTL),
		hold.WithMaxTTL(cfg.Holds.MaxTTL),
		hold.WithLogger(app.logger),
	)

	coordinator := booking.NewCoordinator(st.tx, st.catalog, st.bookings, st.holds, resolver, app.clock,
		booking.WithLogger(app.logger),
		booking.WithEventPublisher(publisher),
	)

	sweeperOpts := []sweeper.Option{
		sweeper.WithInterval(cfg.Sweeper.Interval),
		sweeper.WithLogger(app.logger),
		sweeper.WithClock(app.clock),
	}
	if redisClient != nil {
		sweeperOpts = append(sweeperOpts, sweeper.WithLocker(sweeper.NewRedisLocker(redisClient)))
	}

	sw, err := sweeper.New(coordinator, holdManager, sweeperOpts...)
	if err != nil {
		return err
	}

	app.catalog = st.catalog
	app.resolver = resolver
	app.holds = holdManager
	app.bookings = coordinator
	app.payments = newPaymentProvider(cfg)
	app.sweeper = sw

	return app.run(sw)
}

func newStore(cfg config.Config, logger *slog.Logger) (*store, error) {
	if cfg.DB.Dsn == "" {
		logger.Warn("no database configured, using the in-memory store with a demo catalog")

		mem := repository.NewMemoryStore()
		seedDemoCatalog(mem, time.Now().UTC())

		return &store{
			catalog:      mem,
			availability: mem,
			holds:        mem,
			bookings:     mem,
			tx:           mem,
			close:        func() {},
		}, nil
	}

	if cfg.DB.MigrateOnStart {
		err := migrations.Up(cfg.DB.Dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}

		logger.Info("database migrations applied")
	}

	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	return &store{
		catalog:      repository.NewPostgresCatalogRepository(db),
		availability: repository.NewPostgresAvailabilityRepository(db),
		holds:        repository.NewPostgresHoldRepository(db),
		bookings:     repository.NewPostgresBookingRepository(db),
		tx:           repository.NewPostgresTransactor(db),
		ping:         db.Ping,
		close:        db.Close,
	}, nil
}

func newEventPublisher(cfg config.Config, logger *slog.Logger) (domain.EventPublisher, func(), error) {
	if cfg.Amqp.Url == "" {
		return events.NewLogPublisher(logger), func() {}, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.Amqp.Url, cfg.Amqp.Exchange)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}

	return publisher, closeFn, nil
}

func newPaymentProvider(cfg config.Config) domain.PaymentProvider {
	var online domain.PaymentProvider
	if cfg.Stripe.SecretKey != "" {
		online = payment.NewStripePaymentProvider(cfg.Stripe.Currency, cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl)
	}

	return payment.NewMethodRouter(payment.NewCounterPaymentProvider(), online)
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	if client != nil {
		sessionManager.Store = goredisstore.New(client)
	}
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Url == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		return nil, fmt.Errorf("failed to instrument redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConnIdleTime = cfg.DB.MaxIdleTime
	poolConfig.MaxConns = int32(cfg.DB.MaxOpenConns)
	poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *application) run(sw *sweeper.Sweeper) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Run(sweepCtx)
	}()

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		stopSweeper()
		wg.Wait()

		shutdownError <- err
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopSweeper()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

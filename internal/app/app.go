package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/config"
	"github.com/Freeeeeet/tutorbook/internal/http-server/router"
	"github.com/Freeeeeet/tutorbook/internal/lock"
	"github.com/Freeeeeet/tutorbook/internal/repository"
	"github.com/Freeeeeet/tutorbook/internal/repository/base"
	"github.com/Freeeeeet/tutorbook/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	pool       *pgxpool.Pool
	locker     *lock.RedisLock
	httpServer *http.Server
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if err := a.initDB(ctx); err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	if err := a.runMigrations(ctx); err != nil {
		a.pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	if err := a.initLock(); err != nil {
		a.pool.Close()
		return nil, fmt.Errorf("init lock: %w", err)
	}

	a.initServices()

	return a, nil
}

func (a *App) initDB(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, a.cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	a.pool = pool
	a.logger.Info("Database connected")

	return nil
}

func (a *App) runMigrations(ctx context.Context) error {
	migrator, err := NewMigrator(a.pool, a.cfg.MigrationsDir, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

// initLock подключает Redis, только если задан REDIS_ADDR
func (a *App) initLock() error {
	if a.cfg.RedisAddr == "" {
		a.logger.Info("REDIS_ADDR is not set, reservation lock is database-only")
		return nil
	}

	locker, err := lock.NewRedisLock(a.cfg.RedisAddr)
	if err != nil {
		return err
	}

	a.locker = locker
	a.logger.Info("Redis reservation lock enabled", zap.String("addr", a.cfg.RedisAddr))

	return nil
}

func (a *App) initServices() {
	db := base.NewRepository(a.pool)
	clk := clock.System()

	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Интерфейс с nil-значением внутри не равен nil, поэтому передаём nil явно
	var reservationLock service.ReservationLock
	if a.locker != nil {
		reservationLock = a.locker
	}

	allocator := service.NewAllocator(db, slotRepo, bookingRepo, reservationLock, a.cfg.ReservationLockTTL, clk, a.logger)

	h := router.New(a.logger, router.Services{
		Slots:    service.NewAvailabilityService(db, slotRepo, clk, a.cfg.RecurrenceHorizon(), a.cfg.MaxRecurrenceSpan(), a.logger),
		Bookings: service.NewBookingService(db, bookingRepo, allocator, userRepo, clk, a.logger),
		Sessions: service.NewSessionService(db, bookingRepo, sessionRepo, userRepo, clk, a.logger),
		Payments: service.NewPaymentService(db, bookingRepo, a.logger),
	})

	a.httpServer = &http.Server{
		Addr:         a.cfg.Address,
		Handler:      h,
		ReadTimeout:  a.cfg.Timeout,
		WriteTimeout: a.cfg.Timeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}
}

// Run обслуживает запросы до SIGINT/SIGTERM и затем корректно останавливается
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("HTTP server stopped unexpectedly", zap.Error(runErr))
	}

	if err := a.shutdown(); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down HTTP server", zap.Duration("timeout", a.cfg.ShutdownTimeout))

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	if a.locker != nil {
		if err := a.locker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis lock: %w", err))
		}
	}

	a.pool.Close()
	a.logger.Info("Shutdown finished")

	return errors.Join(errs...)
}

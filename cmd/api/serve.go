package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/idempotency"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the database schema before serving")

	return cmd
}

func run(parent context.Context, cfg *config.Config, logger zerolog.Logger, migrate bool) error {
	logger.Info().Str("version", Version).Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pool, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	publisher, err := events.New(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	m := metrics.New()
	machine := lifecycle.NewMachine(lifecycle.NewPolicy(cfg.Order.CancellationWindow))

	// Repositories
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	carts := cart.NewRedisStorage(rdb, cfg.Order.CartTTL, logger)

	// Services
	menuService := service.NewMenuService(menuRepo, logger)
	cartService := service.NewCartService(carts, menuRepo, logger)
	orderService := service.NewOrderService(service.OrderDeps{
		Orders:        orderRepo,
		Carts:         carts,
		Publisher:     publisher,
		Metrics:       m,
		Machine:       machine,
		Idempotency:   idempotency.NewRedisStore(rdb, cfg.Order.IdempotencyTTL, logger),
		CountdownTick: cfg.Order.CountdownTick,
	}, logger)
	adminService := service.NewAdminService(orderRepo, menuRepo, publisher, m, machine, nil, logger)
	userService := service.NewUserService(userRepo, logger)

	mux := router.New(router.Handlers{
		Menu:  handler.NewMenuHandler(menuService, logger),
		Cart:  handler.NewCartHandler(cartService, logger),
		Order: handler.NewOrderHandler(orderService, logger),
		Admin: handler.NewAdminHandler(adminService, userService, logger),
	}, router.Options{
		APIKey:   cfg.Auth.APIKey,
		Resolver: userService,
		Metrics:  m,
	}, logger)

	// Countdown streams clear their own write deadline. Shutdown waits for
	// them up to ShutdownTimeout, then Close drops the rest.
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Dur("cancellation_window", cfg.Order.CancellationWindow).
			Str("events_driver", cfg.Events.Driver).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

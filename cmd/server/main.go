// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"

	"github.com/rogeriosantos/broskate2/internal/api"
	"github.com/rogeriosantos/broskate2/internal/auth"
	"github.com/rogeriosantos/broskate2/internal/config"
	"github.com/rogeriosantos/broskate2/internal/gateway"
	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/natsbridge"
	"github.com/rogeriosantos/broskate2/internal/notify"
	"github.com/rogeriosantos/broskate2/internal/registry"
	"github.com/rogeriosantos/broskate2/internal/supervisor"
	"github.com/rogeriosantos/broskate2/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting broskate realtime service")

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize JWT manager")
	}

	store, cleanup, err := openStore(cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open notification store")
	}
	defer cleanup()

	reg := registry.New()
	publisher := notify.NewPublisher(store, reg)
	gw := gateway.New(reg, publisher, jwtManager)

	middleware := auth.NewMiddleware(
		jwtManager,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
		cfg.Security.CORSOrigins,
	)
	defer middleware.Stop()

	router := api.NewRouter(api.NewHandlers(reg, publisher, gw), middleware)

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	if cfg.NATS.Enabled {
		tree.AddMessagingService(natsbridge.New(cfg.NATS, publisher))
		logging.Info().Str("url", cfg.NATS.URL).Msg("NATS event bridge enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor stopped with error")
		}
		if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
			for _, svc := range report {
				logging.Warn().Str("service", fmt.Sprintf("%v", svc.Service)).Msg("service did not stop within timeout")
			}
		}

	case err := <-errCh:
		logging.Fatal().Err(err).Msg("supervisor terminated unexpectedly")
	}

	logging.Info().Msg("broskate realtime service stopped")
}

// openStore builds the configured notification store. The returned cleanup
// closes any underlying database and is safe to call once.
func openStore(cfg config.StorageConfig) (notify.Store, func(), error) {
	switch cfg.Backend {
	case "badger":
		opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger at %s: %w", cfg.Path, err)
		}
		logging.Info().Str("path", cfg.Path).Msg("using durable notification store")
		return notify.NewBadgerStore(db), func() { _ = db.Close() }, nil

	default:
		logging.Info().Msg("using in-memory notification store")
		return notify.NewMemoryStore(), func() {}, nil
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/diewo77/go-inventory/internal/db"
	"github.com/diewo77/go-inventory/internal/kafka"
	"github.com/diewo77/go-inventory/internal/logger"
	"github.com/diewo77/go-inventory/internal/metrics"
	"github.com/diewo77/go-inventory/internal/outbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e)
		},
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(*cobra.Command, []string) error {
			conn, err := db.Open(e.cfg.Database, e.log)
			if err != nil {
				return err
			}
			if err := db.Migrate(conn, e.cfg.Database.URL(), e.cfg.App.Migrations); err != nil {
				return err
			}
			e.log.Info("migrations completed", zap.Bool("sql", e.cfg.App.Migrations))
			return nil
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	var catalog bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and the sample catalog",
		RunE: func(*cobra.Command, []string) error {
			conn, err := db.Open(e.cfg.Database, e.log)
			if err != nil {
				return err
			}
			if err := runSeed(conn, e, catalog); err != nil {
				return err
			}
			e.log.Info("seeding completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&catalog, "catalog", true, "insert the sample catalog into an empty inventory")
	return cmd
}

func runSeed(conn *gorm.DB, e *env, catalog bool) error {
	return db.Seed(conn, db.SeedOptions{
		AdminEmail:    e.cfg.App.AdminEmail,
		AdminPassword: e.cfg.App.AdminPassword,
		SampleCatalog: catalog,
	})
}

func serve(ctx context.Context, e *env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := e.cfg
	conn, err := db.Open(cfg.Database, e.log)
	if err != nil {
		return err
	}
	if cfg.App.Dev || cfg.App.Migrations {
		if err := db.Migrate(conn, cfg.Database.URL(), cfg.App.Migrations); err != nil {
			return err
		}
	}
	if cfg.App.Seed || cfg.App.AdminEmail != "" {
		if err := runSeed(conn, e, cfg.App.Seed); err != nil {
			return err
		}
	}

	m := metrics.New(prometheus.NewRegistry(), "inventory")

	relayDone := make(chan struct{})
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger.Component(e.log, "kafka"))
		relay := outbox.NewRelay(conn, producer, cfg.Kafka.Topic, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize,
			m, logger.Component(e.log, "outbox"), outbox.WithMaxAttempts(cfg.Kafka.MaxAttempts))
		go func() {
			defer close(relayDone)
			relay.Run(ctx)
			if err := producer.Close(); err != nil {
				e.log.Warn("kafka producer close failed", zap.Error(err))
			}
		}()
	} else {
		close(relayDone)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(conn, cfg, e.log, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.App.Dev),
			zap.Bool("events", cfg.Kafka.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			<-relayDone
			return err
		}
	case <-ctx.Done():
		e.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error("shutdown failed", zap.Error(err))
	}
	stop()
	<-relayDone
	e.log.Info("server stopped")
	return nil
}

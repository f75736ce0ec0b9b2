package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	dbpkg "github.com/BruksfildServices01/cleaning-scheduler/internal/db"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/payments"
	infraRepo "github.com/BruksfildServices01/cleaning-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/logging"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/routes"
	ucInvoice "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/validators"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/workers"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	gdb, err := openDB()
	if err != nil {
		return err
	}
	if err := dbpkg.Migrate(gdb); err != nil {
		return err
	}

	dashCache := newCache(ctx)
	if closer, ok := dashCache.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	dispatcher := audit.NewDispatcher(audit.New(gdb))
	defer dispatcher.Close()

	deps := routes.Deps{
		DB:         gdb,
		Issuer:     auth.NewIssuer(gdb, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Audit:      dispatcher,
		Dashboard:  dashboard.NewService(gdb, dashCache, cfg.DashboardCacheTTL),
		Storage:    newStorage(),
		Payments:   newPayments(),
		CheckEmail: validators.IsEmailDomainValid,
	}

	runner := workers.NewRunner(cfg.WorkerInterval,
		ucInvoice.NewSweepOverdue(infraRepo.NewInvoiceGormRepository(gdb)),
		workers.NewTrainingExpiry(gdb),
		workers.NewCampaignSender(gdb),
	)
	workerCtx, stopWorkers := context.WithCancel(ctx)
	runner.Start(workerCtx)
	defer func() {
		stopWorkers()
		runner.Wait()
	}()

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCache(ctx context.Context) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}
	rc, err := cache.NewRedis(cfg.RedisURL, "cleaning:")
	if err != nil {
		logger.Warn("redis disabled", zap.Error(err))
		return cache.Noop{}
	}
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, dashboard cache disabled", zap.Error(err))
		_ = rc.Close()
		return cache.Noop{}
	}
	return rc
}

func newStorage() storage.Store {
	if !cfg.StorageEnabled() {
		logger.Info("object storage not configured, uploads disabled")
		return storage.Disabled{}
	}
	return storage.NewS3Store(cfg)
}

func newPayments() payments.Gateway {
	if !cfg.PaymentsEnabled() {
		logger.Info("payment provider not configured, checkout disabled")
		return payments.Disabled{}
	}
	mp, err := payments.NewMercadoPago(cfg.MercadoPagoAccessToken, cfg.PaymentNotificationURL)
	if err != nil {
		logger.Warn("mercadopago disabled", zap.Error(err))
		return payments.Disabled{}
	}
	return mp
}

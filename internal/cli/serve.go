package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/ledger-service/internal/auth"
	"github.com/nurpe/ledger-service/internal/config"
	"github.com/nurpe/ledger-service/internal/db"
	"github.com/nurpe/ledger-service/internal/excel"
	httphandler "github.com/nurpe/ledger-service/internal/http"
	"github.com/nurpe/ledger-service/internal/http/middleware"
	"github.com/nurpe/ledger-service/internal/logger"
	"github.com/nurpe/ledger-service/internal/metrics"
	"github.com/nurpe/ledger-service/internal/pdf"
	"github.com/nurpe/ledger-service/internal/repository"
	"github.com/nurpe/ledger-service/internal/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	m := metrics.New()
	ledger := repository.NewLedgerRepository(database)
	reports := repository.NewReportRepository(database)

	handler := httphandler.NewHandler(httphandler.Services{
		Contracts: service.NewContractService(ledger),
		Payments:  service.NewPaymentService(ledger, m, log),
		Deposits:  service.NewDepositService(ledger, cfg.Ledger.DepositLimitRatio, m, log),
		Reports:   service.NewReportService(reports, excel.NewGenerator(), pdf.NewGenerator(), cfg.Ledger.ReportDefaultLimit),
		Health:    db.NewHealth(database),
	}, log)

	router := httphandler.NewRouter(httphandler.RouterConfig{
		Handler:        handler,
		AuthMiddleware: middleware.Auth(ledger, auth.NewParser(cfg.Auth.AccessSecret), log),
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log),
		Metrics:        m,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Environment:    cfg.Environment,
		Log:            log,
	})

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("driver", cfg.DB.Driver).Msg("starting ledger service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

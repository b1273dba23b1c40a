// Package server initializes and runs the quote core application: it wires
// the database, the external collaborators, the guideline and requoting
// engines and the underwriting service, and serves the operational HTTP
// endpoints (metrics, health).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/quotecore/internal/logging"
	"github.com/dmitrijs2005/quotecore/internal/server/archive"
	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/config"
	"github.com/dmitrijs2005/quotecore/internal/server/guidelines"
	"github.com/dmitrijs2005/quotecore/internal/server/metrics"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/quotecore/internal/server/requoting"
	"github.com/dmitrijs2005/quotecore/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	registry     *prometheus.Registry
	underwriting *services.UnderwritingService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := manager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	pricing := collaborators.NewHTTPPricing(cfg.PricingBaseURL, cfg.CollaboratorTimeout)
	debtCheck := collaborators.NewHTTPDebtCheck(cfg.DebtCheckBaseURL, cfg.CollaboratorTimeout)
	agreements := collaborators.NewHTTPAgreementStatus(cfg.AgreementsBaseURL, cfg.CollaboratorTimeout)

	archiver, err := archive.NewS3Archiver(ctx, archive.S3Config{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}

	registryGuidelines := guidelines.NewRegistry(debtCheck, time.Now)
	denylist := requoting.NewDenylist(cfg.RequoteDenylist)
	requoter := requoting.NewEngine(manager.Quotes(manager.Conn()), agreements, denylist, logger, m, time.Now)

	underwriting := services.NewUnderwritingService(
		manager, registryGuidelines, pricing, requoter, archiver, logger, m,
		[]byte(cfg.SubjectHashPepper), cfg.QuoteValidityDuration)

	return &App{
		config:       cfg,
		logger:       logger,
		registry:     registry,
		underwriting: underwriting,
	}, nil
}

// Underwriting exposes the orchestrator for transport layers built on top of
// the core.
func (app *App) Underwriting() *services.UnderwritingService {
	return app.underwriting
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

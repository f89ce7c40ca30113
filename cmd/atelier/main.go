package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atelier-sur-mesure/atelier-admin/internal/app"
	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/categories"
	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/produits"
	"github.com/atelier-sur-mesure/atelier-admin/internal/clients"
	"github.com/atelier-sur-mesure/atelier-admin/internal/commandes"
	"github.com/atelier-sur-mesure/atelier-admin/internal/observability"
	"github.com/atelier-sur-mesure/atelier-admin/internal/paiements"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/cache"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/httpx"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/pdf"
	"github.com/atelier-sur-mesure/atelier-admin/internal/reports"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
	"github.com/atelier-sur-mesure/atelier-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "atelier_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(cfg.AppCurrency)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	respond := view.NewResponder(logger, templates, csrfManager)

	metrics := observability.NewMetrics()
	apiClient, err := api.NewClient(api.Config{
		BaseURL:  cfg.APIBaseURL,
		Token:    cfg.APIToken,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
		Observer: metrics,
	})
	if err != nil {
		logger.Error("configure api client", slog.Any("error", err))
		os.Exit(1)
	}
	pdfClient := pdf.NewClient(cfg.GotenbergURL, 30*time.Second)
	if !pdfClient.Enabled() {
		logger.Warn("gotenberg url not set, order sheets fall back to html")
	}

	categoryService := categories.NewService(categories.NewRepository(apiClient))
	productService := produits.NewService(produits.NewRepository(apiClient))
	clientService := clients.NewService(clients.NewRepository(apiClient))
	orderService := commandes.NewService(commandes.NewRepository(apiClient), pdfClient)
	paymentService := paiements.NewService(paiements.NewRepository(apiClient))
	reportCache := cache.NewJSON(redisClient, "atelier:rapports", cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(apiClient), reportCache, logger)

	queueOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient := jobs.NewClient(queueOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(queueOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	checks := map[string]httpx.Check{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if pdfClient.Enabled() {
		checks["gotenberg"] = pdfClient.Ping
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Respond:           respond,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Metrics:           metrics,
		HealthChecks:      checks,
		JobsHandler:       jobs.NewHandler(inspector, logger),
		CategoriesHandler: categories.NewHandler(categoryService, respond, cfg.PerPage),
		ProduitsHandler:   produits.NewHandler(productService, categoryService, respond, cfg.PerPage),
		ClientsHandler:    clients.NewHandler(clientService, respond, cfg.PerPage),
		CommandesHandler:  commandes.NewHandler(orderService, clientService, productService, respond, cfg.PerPage),
		PaiementsHandler:  paiements.NewHandler(paymentService, orderService, respond, cfg.PerPage),
		ReportsHandler:    reports.NewHandler(reportService, respond, metrics).WithWarmup(jobClient),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/apiclient"
	"github.com/makkenzo/license-admin-console/internal/config"
	"github.com/makkenzo/license-admin-console/internal/handler"
	"github.com/makkenzo/license-admin-console/internal/service"
	"github.com/makkenzo/license-admin-console/internal/storage"
	"github.com/makkenzo/license-admin-console/internal/worker"
	"github.com/makkenzo/license-admin-console/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting license admin console...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)
	sugarLogger.Infof("License API at %s", cfg.API.BaseURL)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, closeTokens, err := storage.OpenTokenStore(appCtx, cfg, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to open session token store: %v", err)
	}
	defer closeTokens()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := apiclient.New(
		apiclient.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout},
		tokens,
		appLogger,
		apiclient.WithMetrics(apiclient.NewMetrics(registry)),
	)

	reporter := service.NewLogReporter(appLogger)
	navigator := service.NewNavigator()
	views := &handler.Views{
		Session:   service.NewSessionService(client, tokens, navigator, reporter, appLogger),
		Navigator: navigator,
		Dashboard: service.NewDashboardService(client, client, reporter, appLogger),
		Licenses:  service.NewLicenseService(client, reporter, appLogger),
		Stats:     service.NewStatsService(client, reporter, appLogger),
		Reporter:  reporter,
		Location:  cfg.Display.Location(),
	}
	navigator.Register(service.TabDashboard, views.Dashboard)
	navigator.Register(service.TabLicenses, views.Licenses)
	navigator.Register(service.TabStats, views.Stats)

	sugarLogger.Infof("Session state after startup check: %s", views.Session.Start(appCtx))

	gin.SetMode(gin.ReleaseMode)
	router, err := handler.NewRouter(handler.RouterOptions{
		Views:        views,
		Tokens:       tokens,
		Metrics:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AllowOrigins: cfg.CORS.AllowOrigins,
		AccessLog:    true,
	}, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to build router: %v", err)
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	if cfg.Worker.Enabled {
		g.Go(func() error {
			if err := worker.RunWorkers(groupCtx, cfg, client, appLogger); err != nil {
				sugarLogger.Errorw("Asynq worker failed", "error", err)
				return fmt.Errorf("asynq worker error: %w", err)
			}
			sugarLogger.Info("Asynq workers finished gracefully.")
			return nil
		})
	}

	sugarLogger.Info("Console started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else {
			sugarLogger.Errorf("Console shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Console shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Console exiting now.")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/devapi"
	"github.com/makkenzo/license-admin-console/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	port := flag.String("port", envOr("DEVAPI_PORT", "8081"), "Port to listen on")
	basePath := flag.String("base-path", "/api", "Path prefix the endpoints are served under")
	username := flag.String("admin-user", envOr("DEVAPI_ADMIN_USERNAME", "admin"), "Admin username")
	password := flag.String("admin-password", envOr("DEVAPI_ADMIN_PASSWORD", "admin"), "Admin password")
	secret := flag.String("token-secret", os.Getenv("DEVAPI_TOKEN_SECRET"), "HMAC secret for issued tokens")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of issued tokens")
	seed := flag.Bool("seed", false, "Populate the store with demo licenses and activity")
	level := flag.String("log-level", envOr("LOG_LEVEL", "debug"), "Log level")
	flag.Parse()

	appLogger, err := logger.NewZapLogger(*level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	server, err := devapi.New(devapi.Options{
		AdminUsername: *username,
		AdminPassword: *password,
		TokenSecret:   []byte(*secret),
		TokenTTL:      *tokenTTL,
	}, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to build dev API: %v", err)
	}

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *seed {
		if err := server.Seed(appCtx); err != nil {
			sugarLogger.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           server.Handler(*basePath),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		sugarLogger.Infof("Dev License API listening on :%s%s (admin user %q)", *port, *basePath, *username)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("Dev License API stopped.")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		sugarLogger.Errorf("Dev License API exited with error: %v", err)
		os.Exit(1)
	}
}

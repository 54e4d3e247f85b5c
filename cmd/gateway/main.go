package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"securestream/internal/gateway"
	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/middleware"
	"securestream/internal/objectstore"
	"securestream/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadGatewayConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := objectstore.NewMinio(ctx, objectstore.Config{
		Endpoint:  config.ObjectStore.Endpoint,
		AccessKey: config.ObjectStore.AccessKey,
		SecretKey: config.ObjectStore.SecretKey,
		Bucket:    config.ObjectStore.Bucket,
		UseSSL:    config.ObjectStore.UseSSL,
	})
	cancel()
	if err != nil {
		logging.Fatal("Object store error: %v", err)
	}

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		go serveMetrics(config.MetricsPort)
	}

	gw := gateway.New(store, gateway.Config{
		JWTSecret:      []byte(config.JWTSecret),
		AllowedOrigins: config.AllowedOrigins,
	})

	loggedHandler := middleware.Logger(middleware.DefaultLoggingConfig())(gw.Routes())
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Streaming large segments; no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}

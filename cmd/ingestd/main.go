package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"securestream/internal/catalog"
	"securestream/internal/handlers"
	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/middleware"
	"securestream/internal/objectstore"
	"securestream/internal/queue"
	"securestream/internal/startup"
	"securestream/internal/statusmirror"
	"securestream/internal/transcode"
	"securestream/internal/uploader"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadIngestConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Object store
	store, err := objectstore.NewMinio(ctx, objectstore.Config{
		Endpoint:  config.ObjectStore.Endpoint,
		AccessKey: config.ObjectStore.AccessKey,
		SecretKey: config.ObjectStore.SecretKey,
		Bucket:    config.ObjectStore.Bucket,
		UseSSL:    config.ObjectStore.UseSSL,
	})
	if err != nil {
		logging.Fatal("Object store error: %v", err)
	}

	// Catalog
	cat, err := catalog.NewSQLite(ctx, config.CatalogDBPath)
	if err != nil {
		logging.Fatal("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	// Queue state store
	queueStore, err := queue.NewStore(ctx, config.QueueDBPath)
	if err != nil {
		logging.Fatal("Failed to open queue store: %v", err)
	}
	defer queueStore.Close()

	// Pipeline stages
	startup.LogPipelineInit(config.FFmpegPath)
	trans := transcode.New(transcode.Config{
		FFmpegPath:      config.FFmpegPath,
		FFprobePath:     config.FFprobePath,
		SegmentDuration: config.SegmentDuration,
		Encoder:         config.Encoder,
	})
	up := uploader.New(store, uploader.DefaultFileTimeout)

	// Optional Redis status mirror
	var mirror queue.Mirror
	var mirrorClose func() error
	if config.RedisAddr != "" {
		m, err := statusmirror.New(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			logging.Warn("Status mirror disabled: %v", err)
		} else {
			mirror = m
			mirrorClose = m.Close
		}
	}

	q, err := queue.New(ctx, queue.Config{
		WorkDir:       config.WorkDir,
		PublicBaseURL: config.PublicBaseURL,
	}, queueStore, trans, up, cat, mirror)
	if err != nil {
		logging.Fatal("Failed to restore queue: %v", err)
	}

	// Worker loop
	go func() {
		if err := q.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Error("Worker loop exited: %v", err)
		}
	}()

	// Metrics
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		collector = metrics.NewCollector(q, 30*time.Second)
		collector.Start()
		go serveMetrics(config.MetricsPort)
	}

	// Ingest API
	router := mux.NewRouter()
	handlers.New(q).Register(router)

	loggedHandler := middleware.Logger(middleware.DefaultLoggingConfig())(router)
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, cancel, collector, mirrorClose)

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

func handleShutdown(srv *http.Server, cancel context.CancelFunc, collector *metrics.Collector, mirrorClose func() error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	startup.LogShutdownStep("Stopping worker")
	cancel()
	startup.LogShutdownStepComplete("Worker stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if mirrorClose != nil {
		startup.LogShutdownStep("Closing status mirror")
		if err := mirrorClose(); err != nil {
			logging.Warn("Status mirror close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Status mirror closed")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}

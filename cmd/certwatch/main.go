package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Seob0707/CD2-BE/internal/config"
	"github.com/Seob0707/CD2-BE/internal/logger"
	"github.com/Seob0707/CD2-BE/internal/renewal"
	"github.com/Seob0707/CD2-BE/internal/watchhttp"
)

func main() {
	cfg := config.LoadWatchConfig()
	log := logger.New("certwatch", logger.ParseLevel(config.GetString("LOG_LEVEL", "info")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reloader, err := renewal.NewDockerReloader(cfg.DockerHost, cfg.ProxyContainer)
	if err != nil {
		log.Error("failed to create proxy reloader", "error", err)
		os.Exit(1)
	}
	defer reloader.Close()

	renewer := renewal.NewCertbotRenewer(cfg.CertbotBin, cfg.WebrootDir, cfg.CertDir)
	metrics := renewal.NewMetrics(prometheus.DefaultRegisterer)
	daemon := renewal.New(renewer, reloader, log, cfg.Period, cfg.AttemptTimeout, metrics)

	router := watchhttp.New(log, reloader.Ping)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("certwatch server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	daemonDone := make(chan struct{})
	go func() {
		log.Info("renewal daemon starting", "period", cfg.Period.String())
		_ = daemon.Run(ctx)
		close(daemonDone)
	}()

	select {
	case <-ctx.Done():
		<-daemonDone
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("certwatch stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

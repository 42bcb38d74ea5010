package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/zappabad/solotrader/internal/config"
	"github.com/zappabad/solotrader/internal/logging"
	"github.com/zappabad/solotrader/internal/mockserver"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, logCloser := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
		Stdout: true,
	})
	defer logCloser.Close()

	mcfg := mockserver.DefaultConfig()
	mcfg.FulfillOnNextTick = cfg.Mock.FulfillOnNextTick
	srv := &http.Server{
		Addr:              cfg.Mock.Addr,
		Handler:           mockserver.New(mcfg, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("mock game service listening", "addr", cfg.Mock.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "err", err)
	}
	logger.Info("mock game service stopped")
}

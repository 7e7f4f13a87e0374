// File: cmd/yiiep-bridge/main.go
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

	"yiiep-sdk/internal/config"
	payAdapters "yiiep-sdk/internal/infra/adapters/payment"
	"yiiep-sdk/internal/infra/api"
	"yiiep-sdk/internal/infra/logging"
	"yiiep-sdk/internal/infra/metrics"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (in-memory gateway without credentials)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.SetBuildInfo(version, commit)

	// ---- Gateway ----
	gw, err := payAdapters.NewGateway(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("gateway")
	}
	logger.Info().
		Str("merchant_id", logging.Redact(cfg.Yiiep.MerchantID, cfg.Runtime.Dev)).
		Str("mode", cfg.Yiiep.Mode).
		Str("protocol", cfg.Yiiep.Protocol).
		Msg("yiiep gateway ready")

	// ---- HTTP bridge ----
	srv := api.NewServer(gw, api.Options{
		APIKey:         cfg.Bridge.APIKey,
		MerchantID:     logging.Redact(cfg.Yiiep.MerchantID, cfg.Runtime.Dev),
		CORSOrigins:    cfg.Bridge.CORSOrigins,
		RequestTimeout: cfg.Bridge.RequestTimeout,
		Workers:        cfg.Bridge.Workers,
		Dev:            cfg.Runtime.Dev,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Bridge.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("bridge listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bridge.RequestTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	srv.Close()
}

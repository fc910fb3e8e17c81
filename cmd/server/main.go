// Package main - Entry point for the instance allocation API server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"instance-allocator/adapters/catalog"
	"instance-allocator/api"
	"instance-allocator/core/engine"
	"instance-allocator/internal/config"
	"instance-allocator/internal/logging"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Config file")
	addr := flag.String("addr", "", "Server address (default from config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.Set(cfg)
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := catalog.Open(ctx, cfg)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Workers:    cfg.Engine.Workers,
		RoundCents: cfg.Output.RoundCents,
	})
	handler := api.NewHandler(eng, source, cfg.Server.ResponseCacheTTL.Duration, version)
	server := api.NewServer(handler, version)

	logging.Info("instance allocation server listening",
		zap.String("addr", addr),
		zap.String("version", version),
		zap.String("catalog_source", source.Name()))

	if err := server.ListenAndServe(ctx, addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	logging.Info("server stopped")
	return nil
}

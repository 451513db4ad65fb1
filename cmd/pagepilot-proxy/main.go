// Package main runs the PagePilot chat proxy in front of a local Ollama
// server. It is configured from the environment: PORT, PROXY_TARGET,
// PROXY_DEFAULT_MODEL, PROXY_BODY_LIMIT and PROXY_DEV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/pagepilot/pkg/proxy"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	port := flag.String("port", "", "Listen port (overrides PORT)")
	target := flag.String("target", "", "Model server base URL (overrides PROXY_TARGET)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("PagePilot Proxy v%s\n", version)
		return
	}

	cfg, err := proxy.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *target != "" {
		cfg.Target = *target
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := proxy.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("Server error", zap.Error(err))
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

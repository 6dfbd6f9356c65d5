package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/authprobe/internal/app"
	"github.com/samvad-hq/authprobe/internal/config"
	"github.com/samvad-hq/authprobe/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authprobe failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("authprobe starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	probe, err := app.NewProbe(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize probe", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := probe.Close(); cerr != nil {
			logger.ErrorObj("probe close failed", "error", cerr.Error())
		}
	}()

	if err := probe.Run(ctx); err != nil {
		return fmt.Errorf("probe run: %w", err)
	}
	return nil
}

//go:build !js

// Package main is the desktop entry point for the Slime engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/assets"
	"github.com/Faultbox/slime-engine/internal/config"
	"github.com/Faultbox/slime-engine/internal/engine"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
	"github.com/Faultbox/slime-engine/internal/engine/shaders"
	"github.com/Faultbox/slime-engine/internal/engine/window"
	"github.com/Faultbox/slime-engine/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Slime Engine ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("engine error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("engine closed normally")
	logger.Sync()
}

func run(cfg *config.Config) error {
	host, err := window.New(window.Config{
		Title:      "Slime Engine",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer host.Close()

	// Remote assets take priority over the local directory
	loader := assets.NewManager(assets.FileLoader{Root: cfg.Assets.Root})
	if cfg.Assets.BaseURL != "" {
		loader.AddSource(assets.HTTPLoader{BaseURL: cfg.Assets.BaseURL})
	}
	defer loader.Close()

	queue := loop.NewQueue()

	opts := engine.ConfigOptions(cfg)
	opts.Container = host
	opts.Scheduler = queue
	opts.Loader = loader
	opts.Profile = shaders.Desktop

	e, err := engine.New(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-e.Done()
		cancel()
	}()

	e.Start()
	if err := host.Run(ctx, queue); err != nil {
		return err
	}
	return e.Err()
}

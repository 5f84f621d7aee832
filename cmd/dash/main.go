package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finactical/finactical-dash/internal/config"
	"github.com/finactical/finactical-dash/internal/metricsapi"
	"github.com/finactical/finactical-dash/internal/poller"
	"github.com/finactical/finactical-dash/internal/ui"
	"github.com/finactical/finactical-dash/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	apiBase := flag.String("api-base", "", "override metrics API base URL")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	// Optional .env for local development; real env always wins.
	_ = godotenv.Load()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	// Durable user preferences override config-file values; the flag
	// overrides everything for this run.
	settingsPath, err := config.SettingsPath()
	if err != nil {
		settingsPath = ""
	}
	if settingsPath != "" {
		if stored, err := config.LoadSettings(settingsPath); err == nil {
			cfg = config.Resolve(cfg, stored)
		}
	}
	if *apiBase != "" {
		cfg.APIBase = *apiBase
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		cfg.LogLevel = "debug"
	}

	// The TUI owns the terminal, so logs go to a file.
	log, err := logger.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("dashboard starting",
		zap.String("api_base", cfg.APIBase),
		zap.Int("refresh_sec", cfg.RefreshSec),
		zap.String("theme", cfg.Theme))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan poller.State, 16)
	apiKey := cfg.APIKey
	ctrl := poller.New(
		poller.Config{
			APIBase:         cfg.APIBase,
			RefreshInterval: time.Duration(cfg.RefreshSec) * time.Second,
			TradesLimit:     cfg.TradesLimit,
		},
		func(base string) poller.API {
			return metricsapi.NewClient(base, metricsapi.WithAPIKey(apiKey))
		},
		func(st poller.State) { updates <- st },
		log,
	)
	ctrl.Start(ctx)

	model := ui.New(cfg, ctrl, updates, settingsPath, log)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error("ui", zap.Error(err))
		fmt.Fprintf(os.Stderr, "ui: %v\n", err)
		os.Exit(1)
	}
	log.Info("dashboard stopped")
}

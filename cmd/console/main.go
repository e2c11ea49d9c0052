package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/classroom-sim/internal/config"
	"github.com/jwebster45206/classroom-sim/internal/logger"
	"github.com/jwebster45206/classroom-sim/internal/storage"
	"github.com/jwebster45206/classroom-sim/pkg/export"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := logger.OpenFile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	format, err := export.ParseFormat(cfg.ExportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid export format: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(ctx, cfg, log)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to %s storage: %v\n", cfg.StorageBackend, err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	log.Info("Console starting", "storage", cfg.StorageBackend, "scenario_dir", cfg.ScenarioDir)

	p := tea.NewProgram(NewConsoleUI(cfg, store, format, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

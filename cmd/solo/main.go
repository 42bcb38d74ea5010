package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zappabad/solotrader/internal/app"
	"github.com/zappabad/solotrader/internal/config"
	"github.com/zappabad/solotrader/internal/logging"
	"github.com/zappabad/solotrader/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	fresh := flag.Bool("new", false, "start a new game instead of continuing the saved one")
	flag.Parse()

	if err := run(*configPath, *fresh); err != nil {
		fmt.Fprintf(os.Stderr, "solo: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, fresh bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Logs go to the file only; stdout belongs to the terminal UI
	logger, logCloser := logging.New(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.Resolve(ctx, fresh)
	if err != nil {
		return err
	}
	if err := a.Start(ctx, id); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(a.Session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	logger.Info("shut down", "game", id)
	return nil
}

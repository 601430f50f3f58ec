// Command adventure plays the game in the local terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/bootstrap"
	"github.com/cory-johannsen/adventure/internal/frontend/console"
	"github.com/cory-johannsen/adventure/internal/frontend/handlers"
	"github.com/cory-johannsen/adventure/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and ADVENTURE_* env when empty)")
	worldFile := flag.String("world", "", "path to the world YAML file, overriding game.world_file")
	logLevel := flag.String("log-level", "warn", "log level, overriding logging.level; logs go to stderr")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *worldFile != "" {
		cfg.Game.WorldFile = *worldFile
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := observability.NewLogger(cfg.Logging, "adventure")
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	w, err := bootstrap.LoadWorld(cfg.Game, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	palette := handlers.PlainPalette()
	if cfg.Display.Color {
		palette = handlers.ConsolePalette()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, err := handlers.Play(ctx, w, bootstrap.GameOptions(cfg), console.Stdio(),
		handlers.NewRenderer(cfg.Display.Width, palette), logger)
	if err != nil {
		logger.Info("session ended", zap.Stringer("status", status), zap.Error(err))
	}
}

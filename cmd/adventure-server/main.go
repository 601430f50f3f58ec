// Command adventure-server serves the game to Telnet clients, one game at a time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/bootstrap"
	"github.com/cory-johannsen/adventure/internal/frontend/handlers"
	"github.com/cory-johannsen/adventure/internal/frontend/telnet"
	"github.com/cory-johannsen/adventure/internal/observability"
	"github.com/cory-johannsen/adventure/internal/server"
)

func main() {
	start := time.Now()
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging, "adventure-server")
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
		palette = handlers.TelnetPalette()
	}
	games := handlers.NewGameHandler(w, bootstrap.GameOptions(cfg), handlers.NewRenderer(cfg.Display.Width, palette), logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", telnet.NewAcceptor(cfg.Telnet, games, logger))

	logger.Info("server initialized",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

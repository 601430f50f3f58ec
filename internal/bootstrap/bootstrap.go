// Package bootstrap holds the startup steps shared by the adventure binaries.
package bootstrap

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/game/command"
	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/world"
	"github.com/cory-johannsen/adventure/internal/scripting"
)

// LoadConfig loads path, or defaults plus environment overrides when path is empty.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// LoadWorld loads and validates the configured world file, checking every
// script guard compiles and that no verb shadows a meta command.
//
// Postcondition: Returns a validated world or a non-nil error.
func LoadWorld(cfg config.GameConfig, logger *zap.Logger) (*world.World, error) {
	start := time.Now()
	w, err := world.LoadFromFile(cfg.WorldFile, world.LoadOptions{
		HashCost:   bcrypt.DefaultCost,
		CheckGuard: scripting.CheckGuard,
		Reserved:   command.DefaultRegistry().Reserves,
	})
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	logger.Info("world loaded",
		zap.String("file", cfg.WorldFile),
		zap.String("name", w.Name),
		zap.Int("locations", len(w.Locations())),
		zap.Int("items", len(w.Items())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return w, nil
}

// GameOptions maps configuration to engine options.
func GameOptions(cfg config.Config) engine.Options {
	return engine.Options{
		StartLocation: cfg.Game.StartLocation,
		MaxMoves:      cfg.Game.MaxMoves,
		UndoMoves:     cfg.Game.UndoMoves,
		ScriptLimit:   cfg.Scripting.InstructionLimit,
	}
}

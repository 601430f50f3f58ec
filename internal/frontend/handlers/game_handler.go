package handlers

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/frontend/telnet"
	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// ErrGameInProgress is returned to a client that connects while another
// client is playing.
var ErrGameInProgress = errors.New("a game is already in progress")

// GameHandler serves games over Telnet, one client at a time. Every game
// starts from a fresh copy of the world template.
type GameHandler struct {
	template *world.World
	opts     engine.Options
	render   *Renderer
	logger   *zap.Logger

	mu sync.Mutex
}

// NewGameHandler creates a GameHandler for template.
//
// Precondition: template was produced by the world loader; r and logger are non-nil.
func NewGameHandler(template *world.World, opts engine.Options, r *Renderer, logger *zap.Logger) *GameHandler {
	return &GameHandler{template: template, opts: opts, render: r, logger: logger}
}

// HandleSession plays one game over conn, or turns the client away when a
// game is already running.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if !h.mu.TryLock() {
		_ = conn.WriteLine(h.render.Error("Sorry, " + ErrGameInProgress.Error() + ". Try again later."))
		return ErrGameInProgress
	}
	defer h.mu.Unlock()

	status, err := Play(ctx, h.template, h.opts, conn, h.render, h.logger)
	h.logger.Info("game finished",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Stringer("status", status),
	)
	return err
}

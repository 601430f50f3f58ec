// Package handlers runs interactive games over any line-oriented transport.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/command"
	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// Player-facing lines.
const (
	invalidOption = "That was an invalid option; try again."
	decidedTo     = "You decided to: "
	commandPrompt = "> "
	answerPrompt  = "Answer: "
)

// LineIO is a line-oriented player connection.
type LineIO interface {
	ReadLine() (string, error)
	// ReadPassword reads a line without echoing it.
	ReadPassword() (string, error)
	WriteLine(text string) error
	WritePrompt(text string) error
}

// Session plays one game over a LineIO.
type Session struct {
	game   *engine.Game
	interp *command.Interpreter
	render *Renderer
	io     LineIO
	logger *zap.Logger
}

// NewSession creates a Session for g.
//
// Precondition: every argument is non-nil.
func NewSession(g *engine.Game, interp *command.Interpreter, r *Renderer, io LineIO, logger *zap.Logger) *Session {
	return &Session{
		game:   g,
		interp: interp,
		render: r,
		io:     io,
		logger: logger.With(zap.String("game", g.ID.String())),
	}
}

// Run shows the starting location and then reads and applies one line at a
// time until the game ends, ctx is cancelled or the connection fails.
//
// Postcondition: Returns nil once the game is over; otherwise the read,
// write or internal error that ended the session.
func (s *Session) Run(ctx context.Context) error {
	g := s.game
	if err := s.io.WriteLine(s.render.Title(g.World().Name)); err != nil {
		return fmt.Errorf("writing banner: %w", err)
	}
	head := g.History()[0]
	if err := s.showLocation(head.Description); err != nil {
		return err
	}

	for g.Ongoing() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.read()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := s.step(line); err != nil {
			return err
		}
	}
	return s.io.WriteLine(s.render.Final(g.Status(), g.CurrentScore(), g.MovesTaken()))
}

func (s *Session) read() (string, error) {
	if p, ok := s.game.Pending(); ok {
		if err := s.io.WritePrompt(s.render.Prompt(p.Name + " " + answerPrompt)); err != nil {
			return "", err
		}
		return s.io.ReadPassword()
	}
	if err := s.io.WritePrompt(s.render.Prompt(commandPrompt)); err != nil {
		return "", err
	}
	return s.io.ReadLine()
}

// step applies one non-blank line and reports the effect.
func (s *Session) step(line string) error {
	_, pending := s.game.Pending()
	if !pending {
		if err := s.io.WriteLine(s.render.Notice(decidedTo + strings.TrimSpace(line))); err != nil {
			return err
		}
	}

	res, err := s.interp.Execute(s.game, line)
	var (
		invalid    *engine.InvalidCommandError
		restricted *engine.RestrictedActionError
	)
	switch {
	case err == nil:
		return s.show(res)
	case errors.As(err, &invalid):
		return s.io.WriteLine(s.render.Error(invalidOption))
	case errors.As(err, &restricted):
		return s.io.WriteLine(s.render.Error(restricted.Reason))
	case errors.Is(err, engine.ErrGameOver):
		return nil
	default:
		s.logger.Error("command failed", zap.String("input", line), zap.Error(err))
		return err
	}
}

func (s *Session) show(res command.Result) error {
	g := s.game
	switch {
	case res.Action.Handler == command.HandlerInventory:
		return s.io.WriteLine(s.render.Inventory(g.Inventory()))
	case res.Action.Handler == command.HandlerScore:
		return s.io.WriteLine(s.render.Score(g.CurrentScore(), g.MovesTaken(), g.MaxMoves()))
	case res.Action.Handler == command.HandlerLog:
		return s.io.WriteLine(s.render.Log(g.History(), s.locationName))
	case res.Action.Handler == command.HandlerQuit:
		return nil
	case res.Outcome.Arrived || res.Action.Handler == command.HandlerLook:
		if !g.Ongoing() {
			return s.io.WriteLine(s.render.Message(res.Outcome.Message))
		}
		return s.showLocation(res.Outcome.Message)
	default:
		return s.io.WriteLine(s.render.Message(res.Outcome.Message))
	}
}

func (s *Session) showLocation(text string) error {
	return s.io.WriteLine(s.render.Location(s.game.Location(), text, s.interp.Registry().Menu(command.CategoryMeta)))
}

func (s *Session) locationName(id int) string {
	loc, err := s.game.World().Location(id)
	if err != nil {
		return fmt.Sprintf("location %d", id)
	}
	return loc.Name
}

// Play starts a game on w and runs it over io to completion.
//
// Postcondition: Returns the final status; the game's resources are released.
func Play(ctx context.Context, w *world.World, opts engine.Options, io LineIO, r *Renderer, logger *zap.Logger) (engine.Status, error) {
	g, err := engine.New(w, opts, logger)
	if err != nil {
		return engine.Active, err
	}
	defer g.Close()

	interp := command.NewInterpreter(command.DefaultRegistry(), logger)
	err = NewSession(g, interp, r, io, logger).Run(ctx)
	return g.Status(), err
}

// Package transcript replays a scripted list of commands against a world and
// checks the result against an authored walkthrough.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/adventure/internal/game/command"
	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// Result summarizes a replayed game.
type Result struct {
	// Trail is the visited location ids, head to tail.
	Trail []int
	// Status is the final game status.
	Status engine.Status
	Score  int
	Moves  int
	// Skipped lists the commands that were invalid or refused.
	Skipped []string
}

// Run plays commands in order from opts.StartLocation. Invalid and refused
// commands are skipped, as a player would retype them; play stops early once
// the game ends.
//
// Precondition: w is a validated world; logger is non-nil.
// Postcondition: Returns the replay summary, or an error for any fault other
// than an invalid or refused command.
func Run(w *world.World, opts engine.Options, commands []string, logger *zap.Logger) (Result, error) {
	g, err := engine.New(w, opts, logger)
	if err != nil {
		return Result{}, err
	}
	defer g.Close()

	in := command.NewInterpreter(command.DefaultRegistry(), logger)
	var skipped []string
	for i, line := range commands {
		if !g.Ongoing() {
			break
		}
		_, err := in.Execute(g, line)
		var (
			invalid    *engine.InvalidCommandError
			restricted *engine.RestrictedActionError
		)
		switch {
		case err == nil:
		case errors.As(err, &invalid), errors.As(err, &restricted):
			skipped = append(skipped, line)
		default:
			return Result{}, fmt.Errorf("command %d %q: %w", i, line, err)
		}
	}
	return Result{
		Trail:   g.Trail(),
		Status:  g.Status(),
		Score:   g.CurrentScore(),
		Moves:   g.MovesTaken(),
		Skipped: skipped,
	}, nil
}

// Walkthrough is an authored transcript with its expected outcome.
type Walkthrough struct {
	Name     string   `yaml:"name"`
	Start    int      `yaml:"start"`
	MaxMoves int      `yaml:"max_moves"`
	Commands []string `yaml:"commands"`
	// ExpectedTrail is compared exactly when non-empty.
	ExpectedTrail []int `yaml:"expected_trail"`
	// ExpectedStatus is one of active, won, lost or quit; empty skips the check.
	ExpectedStatus string `yaml:"expected_status"`
	// ExpectedScore is compared when non-nil.
	ExpectedScore *int `yaml:"expected_score"`
}

// LoadWalkthrough reads a walkthrough YAML file.
//
// Postcondition: Returns the walkthrough or a non-nil error.
func LoadWalkthrough(path string) (Walkthrough, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Walkthrough{}, fmt.Errorf("reading walkthrough %s: %w", path, err)
	}
	var wt Walkthrough
	if err := yaml.Unmarshal(data, &wt); err != nil {
		return Walkthrough{}, fmt.Errorf("parsing walkthrough %s: %w", path, err)
	}
	if len(wt.Commands) == 0 {
		return Walkthrough{}, fmt.Errorf("walkthrough %s has no commands", path)
	}
	if wt.Name == "" {
		wt.Name = path
	}
	return wt, nil
}

// Options returns the game options the walkthrough is played with.
func (wt Walkthrough) Options() engine.Options {
	opts := engine.DefaultOptions()
	opts.StartLocation = wt.Start
	opts.MaxMoves = wt.MaxMoves
	return opts
}

// Verify compares a replay result against the walkthrough's expectations.
//
// Postcondition: Returns nil when every expectation holds, or an error
// naming each mismatch.
func (wt Walkthrough) Verify(r Result) error {
	var errs []string
	if len(wt.ExpectedTrail) > 0 && !slices.Equal(wt.ExpectedTrail, r.Trail) {
		errs = append(errs, fmt.Sprintf("trail %v, want %v", r.Trail, wt.ExpectedTrail))
	}
	if wt.ExpectedStatus != "" && wt.ExpectedStatus != r.Status.String() {
		errs = append(errs, fmt.Sprintf("status %s, want %s", r.Status, wt.ExpectedStatus))
	}
	if wt.ExpectedScore != nil && *wt.ExpectedScore != r.Score {
		errs = append(errs, fmt.Sprintf("score %d, want %d", r.Score, *wt.ExpectedScore))
	}
	if len(errs) > 0 {
		return fmt.Errorf("walkthrough %s: %s", wt.Name, strings.Join(errs, "; "))
	}
	return nil
}

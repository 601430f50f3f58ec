// Package engine implements the game state machine: the authoritative game
// state and the transitions player commands apply to it.
package engine

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/history"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
	"github.com/cory-johannsen/adventure/internal/game/world"
	"github.com/cory-johannsen/adventure/internal/scripting"
)

// Status is the lifecycle state of a game. Every status except Active is terminal.
type Status int

// Game statuses.
const (
	Active Status = iota
	Won
	Lost
	Quit
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// DefaultUndoMoves is the number of moves one undo refunds by default.
const DefaultUndoMoves = 1

// Options configures a new game.
type Options struct {
	// StartLocation overrides the world's start location when non-zero.
	StartLocation int
	// MaxMoves overrides the world's move budget when non-zero.
	MaxMoves int
	// UndoMoves is the number of moves refunded by one undo.
	UndoMoves int
	// ScriptLimit bounds the Lua instructions per guard. 0 = scripting default.
	ScriptLimit int
}

// DefaultOptions returns the options that play a world by its own rules.
func DefaultOptions() Options {
	return Options{UndoMoves: DefaultUndoMoves}
}

// Outcome describes the effect of an accepted command.
type Outcome struct {
	// Message is the narration for the player.
	Message string
	// Arrived is set when the player entered a location.
	Arrived bool
	// Prompt is set when the game now awaits a puzzle answer.
	Prompt bool
	// Turn reports whether the command consumed a move.
	Turn bool
	// Points is the score awarded by the command.
	Points int
}

// Game is one play-through of a world. It owns a private copy of the world.
//
// A Game has a single owner and is not safe for concurrent use.
type Game struct {
	// ID identifies the game in logs.
	ID uuid.UUID

	world  *world.World
	opts   Options
	logger *zap.Logger
	guards *scripting.Evaluator
	log    *history.Log

	location  int
	inventory *inventory.Set
	score     int
	moves     int
	maxMoves  int
	status    Status
	flags     map[string]bool
	scored    map[string]bool
	placed    map[string]bool
	pending   *world.Puzzle
}

// New starts a game on a copy of w.
//
// Precondition: w was produced by the world loader; logger is non-nil.
// Postcondition: the game is Active at the start location, which is marked
// visited and recorded as the first history entry; or a non-nil error is
// returned when the start location does not exist.
func New(w *world.World, opts Options, logger *zap.Logger) (*Game, error) {
	w = w.Clone()
	start := opts.StartLocation
	if start == 0 {
		start = w.Rules.StartLocation
	}
	loc, err := w.Location(start)
	if err != nil {
		return nil, fmt.Errorf("starting game: %w", err)
	}
	maxMoves := opts.MaxMoves
	if maxMoves == 0 {
		maxMoves = w.Rules.MaxMoves
	}

	id := uuid.New()
	logger = logger.With(zap.String("game", id.String()))
	g := &Game{
		ID:        id,
		world:     w,
		opts:      opts,
		logger:    logger,
		guards:    scripting.NewEvaluator(opts.ScriptLimit, logger),
		log:       history.New(),
		location:  start,
		inventory: inventory.NewSet(),
		maxMoves:  maxMoves,
		status:    Active,
		flags:     make(map[string]bool),
		scored:    make(map[string]bool),
		placed:    make(map[string]bool),
	}
	g.log.Append(start, loc.ArrivalText(), "")
	loc.Visited = true

	logger.Info("game started",
		zap.Int("location", start),
		zap.Int("max_moves", maxMoves),
	)
	return g, nil
}

// Close releases the game's script state.
func (g *Game) Close() {
	g.guards.Close()
}

// World returns the game's private world.
func (g *Game) World() *world.World {
	return g.world
}

// Location returns the current location.
//
// Postcondition: never nil for a game built by New.
func (g *Game) Location() *world.Location {
	loc, err := g.world.Location(g.location)
	if err != nil {
		// The current location always comes from a validated edge or the history log.
		panic(fmt.Sprintf("engine: current location vanished: %v", err))
	}
	return loc
}

// LocationID returns the current location id.
func (g *Game) LocationID() int { return g.location }

// Inventory returns the held item names in the order they were taken.
func (g *Game) Inventory() []string { return g.inventory.Names() }

// Holds reports whether the player carries the named item.
func (g *Game) Holds(item string) bool { return g.inventory.Contains(item) }

// HasFlag reports whether a named flag is set.
func (g *Game) HasFlag(name string) bool { return g.flags[name] }

// Flags returns the names of all set flags in sorted order.
func (g *Game) Flags() []string {
	var out []string
	for _, name := range slices.Sorted(maps.Keys(g.flags)) {
		if g.flags[name] {
			out = append(out, name)
		}
	}
	return out
}

// CurrentScore returns the score.
func (g *Game) CurrentScore() int { return g.score }

// MovesTaken returns the number of moves consumed.
func (g *Game) MovesTaken() int { return g.moves }

// MaxMoves returns the move budget.
func (g *Game) MaxMoves() int { return g.maxMoves }

// Status returns the lifecycle state.
func (g *Game) Status() Status { return g.status }

// Ongoing reports whether the game still accepts commands.
func (g *Game) Ongoing() bool { return g.status == Active }

// Pending returns the puzzle awaiting an answer, if any.
func (g *Game) Pending() (*world.Puzzle, bool) {
	return g.pending, g.pending != nil
}

// Placed reports whether an item was consumed by a use effect.
func (g *Game) Placed(item string) bool { return g.placed[inventory.Fold(item)] }

// History returns a copy of the history entries, head to tail.
func (g *Game) History() []history.Entry { return g.log.Entries() }

// Trail returns the visited location ids, head to tail.
func (g *Game) Trail() []int { return g.log.Trail() }

// Replay iterates the history lazily, head to tail.
func (g *Game) Replay() iter.Seq[history.Step] { return g.log.Replay() }

// Look returns the full description of the current location.
func (g *Game) Look() string {
	return g.Location().LongOrBrief()
}

// CheckWin ends the game as won when the player stands at the goal location
// with exactly the winning score.
//
// Postcondition: Returns true iff Status() is Won. Leaves an Active game
// untouched when the predicate does not hold.
func (g *Game) CheckWin() bool {
	if g.status != Active {
		return g.status == Won
	}
	r := g.world.Rules
	if g.location == r.GoalLocation && g.score == r.WinningScore {
		g.status = Won
		g.logger.Info("game won", zap.Int("score", g.score), zap.Int("moves", g.moves))
		return true
	}
	return false
}

// CheckLoss ends the game as lost once the move budget is used up.
//
// Postcondition: Returns true iff Status() is Lost.
func (g *Game) CheckLoss() bool {
	if g.status != Active {
		return g.status == Lost
	}
	if g.moves >= g.maxMoves {
		g.status = Lost
		g.logger.Info("game lost", zap.Int("score", g.score), zap.Int("moves", g.moves))
		return true
	}
	return false
}

// Undo returns the player to the previous location in the history and
// refunds the configured number of moves, never below zero. Inventory, flags
// and score are not rolled back. With fewer than two history entries Undo
// does nothing.
//
// Postcondition: LocationID() equals the new history tail's location.
func (g *Game) Undo() (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	if g.log.Len() < 2 {
		return Outcome{Message: "There is nothing to undo."}, nil
	}
	g.log.UndoLast()
	tail, _ := g.log.Tail()
	g.location = tail.LocationID
	g.moves = max(0, g.moves-g.opts.UndoMoves)

	g.logger.Debug("undo",
		zap.Int("location", g.location),
		zap.Int("moves", g.moves),
	)
	return Outcome{Message: g.Location().Brief, Arrived: true}, nil
}

// Quit ends the game at the player's request.
//
// Postcondition: Status() is Quit.
func (g *Game) Quit() error {
	if err := g.checkActive(); err != nil {
		return err
	}
	g.status = Quit
	g.pending = nil
	g.logger.Info("game quit", zap.Int("score", g.score), zap.Int("moves", g.moves))
	return nil
}

func (g *Game) checkActive() error {
	if g.status != Active {
		return ErrGameOver
	}
	return nil
}

// turn records one consumed move.
func (g *Game) turn(action string) {
	g.moves++
	g.logger.Debug("turn",
		zap.String("action", action),
		zap.Int("location", g.location),
		zap.Int("moves", g.moves),
		zap.Int("score", g.score),
	)
}

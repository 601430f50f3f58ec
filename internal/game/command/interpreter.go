package command

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// Kind classifies a line of player input.
type Kind int

// Input kinds, in the order the interpreter tries them.
const (
	KindInvalid Kind = iota
	KindAnswer
	KindMeta
	KindNavigate
	KindSpecial
	KindTake
	KindUse
)

func (k Kind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	case KindMeta:
		return "meta"
	case KindNavigate:
		return "navigate"
	case KindSpecial:
		return "special"
	case KindTake:
		return "take"
	case KindUse:
		return "use"
	default:
		return "invalid"
	}
}

// TurnContext is the slice of game state classification depends on. It is
// built fresh for every line and passed explicitly.
type TurnContext struct {
	// Location is the current location.
	Location *world.Location
	// Pending is set while a puzzle awaits an answer.
	Pending bool
}

// ContextOf snapshots the turn context of g.
func ContextOf(g *engine.Game) TurnContext {
	_, pending := g.Pending()
	return TurnContext{Location: g.Location(), Pending: pending}
}

// Action is a classified line of input.
type Action struct {
	Kind Kind
	// Input is the normalized input; for answers it is the trimmed raw text.
	Input string
	// Handler is the meta handler for KindMeta.
	Handler string
	// Verb is the navigation or special verb.
	Verb string
	// Item is the item name for KindTake and KindUse.
	Item string
}

// Result is the effect of executing one line.
type Result struct {
	Action  Action
	Outcome engine.Outcome
	// Status is the game status after win and loss were evaluated.
	Status engine.Status
}

// Interpreter validates player input against the current location and the
// global commands, and dispatches it to the game.
type Interpreter struct {
	registry *Registry
	logger   *zap.Logger
}

// NewInterpreter creates an Interpreter over registry.
//
// Precondition: registry and logger must be non-nil.
func NewInterpreter(registry *Registry, logger *zap.Logger) *Interpreter {
	return &Interpreter{registry: registry, logger: logger}
}

// Registry returns the command registry.
func (in *Interpreter) Registry() *Registry {
	return in.registry
}

// Classify decides what a line of input means in ctx. A pending puzzle
// claims every line as its answer. Otherwise global commands win over
// navigation verbs, which win over special verbs, which win over take and use.
//
// Postcondition: Returns an Action; KindInvalid when nothing matches.
func (in *Interpreter) Classify(input string, ctx TurnContext) Action {
	if ctx.Pending {
		answer := strings.TrimSpace(input)
		if answer == "" {
			return Action{Kind: KindInvalid}
		}
		return Action{Kind: KindAnswer, Input: answer}
	}

	norm := world.NormalizeVerb(input)
	if norm == "" {
		return Action{Kind: KindInvalid}
	}
	p := Parse(norm)
	if cmd, ok := in.registry.Resolve(p.Command); ok && cmd.Category == CategoryMeta && len(p.Args) == 0 {
		return Action{Kind: KindMeta, Input: norm, Handler: cmd.Handler}
	}
	if ctx.Location != nil {
		if _, ok := ctx.Location.Destination(norm); ok {
			return Action{Kind: KindNavigate, Input: norm, Verb: norm}
		}
		if ctx.Location.HasSpecial(norm) {
			return Action{Kind: KindSpecial, Input: norm, Verb: norm}
		}
	}
	if cmd, ok := in.registry.Resolve(p.Command); ok && cmd.Category == CategoryItem && p.RawArgs != "" {
		switch cmd.Handler {
		case HandlerTake:
			return Action{Kind: KindTake, Input: norm, Item: p.RawArgs}
		case HandlerUse:
			return Action{Kind: KindUse, Input: norm, Item: p.RawArgs}
		}
	}
	return Action{Kind: KindInvalid, Input: norm}
}

// Execute classifies input against g and applies it. After every accepted
// command the win condition and then the loss condition are evaluated.
//
// Postcondition: an invalid line yields *engine.InvalidCommandError and
// leaves g untouched; engine errors are returned unchanged.
func (in *Interpreter) Execute(g *engine.Game, input string) (Result, error) {
	action := in.Classify(input, ContextOf(g))
	res := Result{Action: action, Status: g.Status()}

	var (
		out engine.Outcome
		err error
	)
	switch action.Kind {
	case KindInvalid:
		return res, &engine.InvalidCommandError{Command: action.Input}
	case KindAnswer:
		out, err = g.Answer(action.Input)
	case KindMeta:
		out, err = in.meta(g, action.Handler)
	case KindNavigate:
		out, err = g.Move(action.Verb)
	case KindSpecial:
		out, err = g.Special(action.Verb)
	case KindTake:
		out, err = g.Take(action.Item)
	case KindUse:
		out, err = g.Use(action.Item)
	default:
		return res, fmt.Errorf("unhandled input kind %s", action.Kind)
	}
	if err != nil {
		in.logger.Debug("command refused",
			zap.String("game", g.ID.String()),
			zap.Stringer("kind", action.Kind),
			zap.Error(err),
		)
		return res, err
	}

	if !g.CheckWin() {
		g.CheckLoss()
	}
	res.Outcome = out
	res.Status = g.Status()
	return res, nil
}

// meta applies a global command. Commands that only display state return an
// empty outcome; the front end renders them from the game.
func (in *Interpreter) meta(g *engine.Game, handler string) (engine.Outcome, error) {
	switch handler {
	case HandlerLook:
		return engine.Outcome{Message: g.Look()}, nil
	case HandlerUndo:
		return g.Undo()
	case HandlerQuit:
		return engine.Outcome{}, g.Quit()
	case HandlerInventory, HandlerScore, HandlerLog:
		if !g.Ongoing() {
			return engine.Outcome{}, engine.ErrGameOver
		}
		return engine.Outcome{}, nil
	default:
		return engine.Outcome{}, fmt.Errorf("unknown meta handler %q", handler)
	}
}

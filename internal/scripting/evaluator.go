package scripting

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"
)

// StateView is the read-only game state visible to guards as the global
// table game:
//
//	game.flag(name)  -> bool
//	game.has(item)   -> bool
//	game.here()      -> location id
//	game.score()     -> score
//	game.moves()     -> moves taken
type StateView interface {
	HasFlag(name string) bool
	Holds(item string) bool
	LocationID() int
	CurrentScore() int
	MovesTaken() int
}

// Compile compiles a guard expression.
//
// Postcondition: Returns the compiled chunk or a syntax error.
func Compile(expr string) (*lua.FunctionProto, error) {
	src := "return (" + expr + ")"
	chunk, err := parse.Parse(strings.NewReader(src), "guard")
	if err != nil {
		return nil, fmt.Errorf("parsing guard: %w", err)
	}
	proto, err := lua.Compile(chunk, "guard")
	if err != nil {
		return nil, fmt.Errorf("compiling guard: %w", err)
	}
	return proto, nil
}

// CheckGuard reports whether expr compiles. It matches the world loader's
// guard checking hook.
func CheckGuard(expr string) error {
	_, err := Compile(expr)
	return err
}

// Evaluator evaluates guard expressions against a StateView. It owns one
// sandboxed LState and caches compiled guards.
//
// An Evaluator belongs to a single game and is not safe for concurrent use.
type Evaluator struct {
	L        *lua.LState
	limit    int
	logger   *zap.Logger
	compiled map[string]*lua.FunctionProto
	view     StateView
}

// NewEvaluator creates an Evaluator with the game table registered.
//
// Precondition: logger must be non-nil; limit >= 0 (0 = DefaultInstructionLimit).
// Postcondition: Returns a ready Evaluator; the caller must call Close.
func NewEvaluator(limit int, logger *zap.Logger) *Evaluator {
	e := &Evaluator{
		L:        NewSandboxedState(),
		limit:    limit,
		logger:   logger,
		compiled: make(map[string]*lua.FunctionProto),
	}
	e.registerGame()
	return e
}

func (e *Evaluator) registerGame() {
	L := e.L
	game := L.NewTable()
	L.SetField(game, "flag", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(e.view != nil && e.view.HasFlag(L.CheckString(1))))
		return 1
	}))
	L.SetField(game, "has", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(e.view != nil && e.view.Holds(L.CheckString(1))))
		return 1
	}))
	L.SetField(game, "here", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.viewInt(StateView.LocationID)))
		return 1
	}))
	L.SetField(game, "score", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.viewInt(StateView.CurrentScore)))
		return 1
	}))
	L.SetField(game, "moves", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.viewInt(StateView.MovesTaken)))
		return 1
	}))
	L.SetGlobal("game", game)
}

func (e *Evaluator) viewInt(f func(StateView) int) int {
	if e.view == nil {
		return 0
	}
	return f(e.view)
}

// Eval evaluates expr against view. An empty expression is true. A guard that
// fails to compile, raises an error or exceeds the instruction limit evaluates
// false and the error is returned and logged at Warn.
//
// Postcondition: Returns the Lua truthiness of the expression's value.
func (e *Evaluator) Eval(expr string, view StateView) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	proto, ok := e.compiled[expr]
	if !ok {
		var err error
		proto, err = Compile(expr)
		if err != nil {
			e.logger.Warn("scripting: guard does not compile", zap.String("guard", expr), zap.Error(err))
			return false, err
		}
		e.compiled[expr] = proto
	}

	e.view = view
	defer func() { e.view = nil }()

	L := e.L
	var result lua.LValue = lua.LNil
	err := runLimited(L, e.limit, func() error {
		L.Push(L.NewFunctionFromProto(proto))
		if err := L.PCall(0, 1, nil); err != nil {
			return err
		}
		result = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		L.SetTop(0)
		e.logger.Warn("scripting: guard failed", zap.String("guard", expr), zap.Error(err))
		return false, fmt.Errorf("evaluating guard %q: %w", expr, err)
	}
	return lua.LVAsBool(result), nil
}

// Close releases the Lua state.
func (e *Evaluator) Close() {
	e.L.Close()
}

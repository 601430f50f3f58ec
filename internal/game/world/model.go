// Package world provides the game world model: locations, items, puzzles and the
// rules a game is played under.
package world

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// Location is a node of the location graph.
type Location struct {
	// ID uniquely identifies the location. Always positive.
	ID int
	// Name is the short display name.
	Name string
	// Brief is shown on every visit after the first.
	Brief string
	// Long is shown on the first visit and by look. Falls back to Brief when empty.
	Long string
	// Commands maps each navigation verb to its destination location id.
	Commands map[string]int
	// Items holds the names of the items currently lying here.
	Items *inventory.Set
	// Locked refuses entry while true.
	Locked bool
	// Visited flips to true on first arrival.
	Visited bool
	// Special lists the extra verbs that are only legal here.
	Special []string
}

// Destination returns the location id reached by verb.
//
// Postcondition: Returns (id, true) if verb is a navigation verb here, or (0, false).
func (l *Location) Destination(verb string) (int, bool) {
	id, ok := l.Commands[NormalizeVerb(verb)]
	return id, ok
}

// Verbs returns the navigation verbs of the location in sorted order.
func (l *Location) Verbs() []string {
	verbs := make([]string, 0, len(l.Commands))
	for v := range l.Commands {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs
}

// HasSpecial reports whether verb is one of the location's special verbs.
func (l *Location) HasSpecial(verb string) bool {
	return slices.Contains(l.Special, NormalizeVerb(verb))
}

// LongOrBrief returns the long description, or the brief one when no long text exists.
func (l *Location) LongOrBrief() string {
	if l.Long != "" {
		return l.Long
	}
	return l.Brief
}

// ArrivalText returns the text shown when the player enters the location:
// the long description on the first visit and the brief one afterwards.
//
// Precondition: called before Visited is set for the arrival.
func (l *Location) ArrivalText() string {
	if !l.Visited {
		return l.LongOrBrief()
	}
	return l.Brief
}

func (l *Location) clone() *Location {
	c := *l
	c.Commands = maps.Clone(l.Commands)
	c.Items = l.Items.Clone()
	c.Special = slices.Clone(l.Special)
	return &c
}

// EffectKind names one state change applied by a use rule.
type EffectKind string

// Effect kinds.
const (
	EffectSetFlag   EffectKind = "set_flag"
	EffectClearFlag EffectKind = "clear_flag"
	EffectUnlock    EffectKind = "unlock"
	EffectAward     EffectKind = "award"
	EffectConsume   EffectKind = "consume"
)

// Effect is one state change. Flag is set for the flag kinds and Location for unlock.
type Effect struct {
	Kind     EffectKind
	Flag     string
	Location int
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectSetFlag, EffectClearFlag:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Flag)
	case EffectUnlock:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Location)
	default:
		return string(e.Kind)
	}
}

// UseRule describes what happens when an item is used at a location.
type UseRule struct {
	// At is the location where the rule applies.
	At int
	// Requires lists flags that must all be set.
	Requires []string
	// Guard is an optional scripted condition that must evaluate true.
	Guard string
	// Refusal is shown when Requires or Guard is not satisfied.
	Refusal string
	// Message is shown when the rule fires.
	Message string
	// Effects are applied in order.
	Effects []Effect
}

// Item is a collectible object.
type Item struct {
	Name        string
	Description string
	// StartPosition is the location the item lies at when the game begins.
	StartPosition int
	// TargetPosition is where the item scores; 0 when the item has no target.
	TargetPosition int
	// TargetPoints is awarded at most once, by an award effect.
	TargetPoints int
	// TakeRequires lists flags that must all be set before the item can be taken.
	TakeRequires []string
	// TakeGuard is an optional scripted condition for taking the item.
	TakeGuard string
	// TakeRefusal is shown when the item cannot be taken yet.
	TakeRefusal string
	// Uses is the use table for this item.
	Uses []UseRule
}

// RuleAt returns the use rule for the given location.
//
// Postcondition: Returns (rule, true) if the item can be used at locationID.
func (it *Item) RuleAt(locationID int) (UseRule, bool) {
	for _, r := range it.Uses {
		if r.At == locationID {
			return r, true
		}
	}
	return UseRule{}, false
}

// Puzzle gates a flag behind a special verb and a secret answer.
type Puzzle struct {
	Name        string
	Description string
	// Command is the special verb that starts the puzzle.
	Command string
	// Location is where Command is legal.
	Location int
	// RequiredItems must all be held to attempt the puzzle.
	RequiredItems []string
	// SolutionHash is the bcrypt hash of the answer.
	SolutionHash []byte
	// SetsFlag is set when the puzzle is solved.
	SetsFlag string
	// Message is shown when the puzzle is solved.
	Message string
	// Solved is true once the correct answer has been given.
	Solved bool
}

// Check reports whether answer solves the puzzle. Surrounding whitespace is ignored.
func (p *Puzzle) Check(answer string) bool {
	return bcrypt.CompareHashAndPassword(p.SolutionHash, []byte(strings.TrimSpace(answer))) == nil
}

// Rules are the win and loss parameters of the world.
type Rules struct {
	StartLocation int
	GoalLocation  int
	WinningScore  int
	MaxMoves      int
}

type puzzleKey struct {
	location int
	command  string
}

// World is the loaded, validated world. Only location Items, Locked, Visited
// and puzzle Solved change after loading.
type World struct {
	Name  string
	Rules Rules

	locations map[int]*Location
	items     map[string]*Item
	itemOrder []string
	puzzles   map[puzzleKey]*Puzzle
}

// Location returns the location with the given id.
//
// Postcondition: Returns the location or an *UnknownLocationError.
func (w *World) Location(id int) (*Location, error) {
	l, ok := w.locations[id]
	if !ok {
		return nil, &UnknownLocationError{ID: id}
	}
	return l, nil
}

// Item returns the item with the given name, compared case-insensitively.
//
// Postcondition: Returns the item or an *UnknownItemError.
func (w *World) Item(name string) (*Item, error) {
	it, ok := w.items[inventory.Fold(name)]
	if !ok {
		return nil, &UnknownItemError{Name: name}
	}
	return it, nil
}

// Puzzle returns the puzzle started by command at the given location.
func (w *World) Puzzle(locationID int, command string) (*Puzzle, bool) {
	p, ok := w.puzzles[puzzleKey{locationID, NormalizeVerb(command)}]
	return p, ok
}

// Navigate resolves movement from a location along a verb.
//
// Precondition: fromID must exist in the world.
// Postcondition: Returns the destination, or an error wrapping ErrNoExit,
// ErrLocked, or an *UnknownLocationError.
func (w *World) Navigate(fromID int, verb string) (*Location, error) {
	from, err := w.Location(fromID)
	if err != nil {
		return nil, err
	}
	destID, ok := from.Destination(verb)
	if !ok {
		return nil, fmt.Errorf("%q from location %d: %w", verb, fromID, ErrNoExit)
	}
	dest, err := w.Location(destID)
	if err != nil {
		return nil, fmt.Errorf("%q from location %d: %w", verb, fromID, err)
	}
	if dest.Locked {
		return nil, fmt.Errorf("%q from location %d: %w", verb, fromID, ErrLocked)
	}
	return dest, nil
}

// Locations returns all locations ordered by id.
func (w *World) Locations() []*Location {
	out := make([]*Location, 0, len(w.locations))
	for _, id := range slices.Sorted(maps.Keys(w.locations)) {
		out = append(out, w.locations[id])
	}
	return out
}

// Items returns all items in declaration order.
func (w *World) Items() []*Item {
	out := make([]*Item, 0, len(w.itemOrder))
	for _, key := range w.itemOrder {
		out = append(out, w.items[key])
	}
	return out
}

// TotalPoints returns the sum of every item's target points.
func (w *World) TotalPoints() int {
	total := 0
	for _, it := range w.items {
		total += it.TargetPoints
	}
	return total
}

// Clone returns a deep copy of the mutable parts of the world. Items are shared.
//
// Postcondition: mutating the clone's locations or puzzles does not affect w.
func (w *World) Clone() *World {
	c := &World{
		Name:      w.Name,
		Rules:     w.Rules,
		locations: make(map[int]*Location, len(w.locations)),
		items:     w.items,
		itemOrder: w.itemOrder,
		puzzles:   make(map[puzzleKey]*Puzzle, len(w.puzzles)),
	}
	for id, l := range w.locations {
		c.locations[id] = l.clone()
	}
	for k, p := range w.puzzles {
		cp := *p
		c.puzzles[k] = &cp
	}
	return c
}

// NormalizeVerb lowercases a verb and collapses whitespace runs.
func NormalizeVerb(verb string) string {
	return strings.ToLower(strings.Join(strings.Fields(verb), " "))
}

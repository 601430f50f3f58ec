package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// Move follows a navigation verb from the current location.
//
// Postcondition: on success the player is at the destination, one move is
// consumed, the destination is recorded in the history and marked visited.
// An unknown verb yields *InvalidCommandError and a locked destination
// *RestrictedActionError, both without any state change.
func (g *Game) Move(verb string) (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	verb = world.NormalizeVerb(verb)
	dest, err := g.world.Navigate(g.location, verb)
	switch {
	case errors.Is(err, world.ErrNoExit):
		return Outcome{}, &InvalidCommandError{Command: verb, Reason: "you can't go that way"}
	case errors.Is(err, world.ErrLocked):
		return Outcome{}, &RestrictedActionError{Action: verb, Reason: "The way is locked."}
	case err != nil:
		return Outcome{}, fmt.Errorf("moving %q: %w", verb, err)
	}

	text := dest.ArrivalText()
	dest.Visited = true
	g.location = dest.ID
	g.log.Append(dest.ID, text, verb)
	g.turn(verb)
	return Outcome{Message: text, Arrived: true, Turn: true}, nil
}

// Take moves an item lying at the current location into the inventory.
//
// Precondition: the item's take requirements and guard hold.
// Postcondition: on success the item is held and no longer at the location,
// and one move is consumed.
func (g *Game) Take(name string) (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	action := "take " + name
	loc := g.Location()
	stored, ok := loc.Items.Lookup(name)
	if !ok {
		if g.inventory.Contains(name) {
			return Outcome{}, &RestrictedActionError{Action: action, Reason: "You already have that."}
		}
		return Outcome{}, &InvalidCommandError{Command: action, Reason: "there is no such item here"}
	}
	item, err := g.world.Item(stored)
	if err != nil {
		return Outcome{}, fmt.Errorf("taking %q: %w", stored, err)
	}
	fallback := fmt.Sprintf("You can't take the %s yet.", item.Name)
	for _, flag := range item.TakeRequires {
		if !g.flags[flag] {
			return Outcome{}, restricted(action, item.TakeRefusal, fallback)
		}
	}
	ok, err = g.guards.Eval(item.TakeGuard, g)
	if err != nil {
		return Outcome{}, fmt.Errorf("taking %q: %w", stored, err)
	}
	if !ok {
		return Outcome{}, restricted(action, item.TakeRefusal, fallback)
	}

	loc.Items.Remove(stored)
	g.inventory.Add(stored)
	g.turn(action)
	return Outcome{Message: fmt.Sprintf("You take the %s.", item.Name), Turn: true}, nil
}

// Use applies a held item at the current location through the item's use
// table. Target points are awarded at most once per item.
//
// Postcondition: on success the rule's effects are applied in order and one
// move is consumed. An item that is not held, or has no rule here, or whose
// rule requirements are unmet yields *RestrictedActionError with no change.
func (g *Game) Use(name string) (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	action := "use " + name
	stored, ok := g.inventory.Lookup(name)
	if !ok {
		return Outcome{}, &RestrictedActionError{Action: action, Reason: fmt.Sprintf("You are not carrying %s.", name)}
	}
	item, err := g.world.Item(stored)
	if err != nil {
		return Outcome{}, fmt.Errorf("using %q: %w", stored, err)
	}
	rule, ok := item.RuleAt(g.location)
	if !ok {
		return Outcome{}, &RestrictedActionError{Action: action, Reason: fmt.Sprintf("The %s can't be used here.", item.Name)}
	}
	fallback := fmt.Sprintf("Nothing happens when you use the %s.", item.Name)
	for _, flag := range rule.Requires {
		if !g.flags[flag] {
			return Outcome{}, restricted(action, rule.Refusal, fallback)
		}
	}
	ok, err = g.guards.Eval(rule.Guard, g)
	if err != nil {
		return Outcome{}, fmt.Errorf("using %q: %w", stored, err)
	}
	if !ok {
		return Outcome{}, restricted(action, rule.Refusal, fallback)
	}

	points, err := g.apply(item, rule.Effects)
	if err != nil {
		return Outcome{}, fmt.Errorf("using %q: %w", stored, err)
	}
	g.turn(action)

	msg := rule.Message
	if msg == "" {
		msg = fmt.Sprintf("You use the %s.", item.Name)
	}
	if points > 0 {
		msg = fmt.Sprintf("%s (+%d points)", msg, points)
	}
	return Outcome{Message: msg, Turn: true, Points: points}, nil
}

// apply runs effects in order and returns the points awarded. Unlock targets
// are resolved before any effect is applied so a failure changes nothing.
func (g *Game) apply(item *world.Item, effects []world.Effect) (int, error) {
	for _, e := range effects {
		if e.Kind == world.EffectUnlock {
			if _, err := g.world.Location(e.Location); err != nil {
				return 0, err
			}
		}
	}
	key := inventory.Fold(item.Name)
	points := 0
	for _, e := range effects {
		switch e.Kind {
		case world.EffectSetFlag:
			g.flags[e.Flag] = true
		case world.EffectClearFlag:
			delete(g.flags, e.Flag)
		case world.EffectUnlock:
			loc, _ := g.world.Location(e.Location)
			loc.Locked = false
		case world.EffectAward:
			if !g.scored[key] {
				g.scored[key] = true
				g.score += item.TargetPoints
				points += item.TargetPoints
			}
		case world.EffectConsume:
			g.inventory.Remove(item.Name)
			g.placed[key] = true
		}
		g.logger.Debug("effect", zap.String("item", item.Name), zap.Stringer("effect", e))
	}
	return points, nil
}

// Special starts the puzzle behind a special verb of the current location.
//
// Postcondition: on success the game awaits an answer (Pending reports the
// puzzle) and one move is consumed.
func (g *Game) Special(verb string) (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	verb = world.NormalizeVerb(verb)
	loc := g.Location()
	if !loc.HasSpecial(verb) {
		return Outcome{}, &InvalidCommandError{Command: verb, Reason: "not possible here"}
	}
	p, ok := g.world.Puzzle(loc.ID, verb)
	if !ok {
		return Outcome{}, fmt.Errorf("special %q at %d: no puzzle", verb, loc.ID)
	}
	if p.Solved {
		return Outcome{}, &RestrictedActionError{Action: verb, Reason: "You have already done that."}
	}
	for _, name := range p.RequiredItems {
		if !g.inventory.Contains(name) {
			return Outcome{}, &RestrictedActionError{Action: verb, Reason: fmt.Sprintf("You need the %s for that.", name)}
		}
	}

	g.pending = p
	g.turn(verb)
	prompt := p.Description
	if prompt == "" {
		prompt = fmt.Sprintf("%s: enter the answer.", p.Name)
	}
	return Outcome{Message: prompt, Prompt: true, Turn: true}, nil
}

// Answer resolves the pending puzzle. Answering does not consume a move.
//
// Postcondition: no puzzle is pending. A correct answer marks the puzzle
// solved and sets its flag; a wrong one yields *RestrictedActionError.
func (g *Game) Answer(text string) (Outcome, error) {
	if err := g.checkActive(); err != nil {
		return Outcome{}, err
	}
	p := g.pending
	if p == nil {
		return Outcome{}, &InvalidCommandError{Command: "answer", Reason: "nothing is awaiting an answer"}
	}
	g.pending = nil
	if !p.Check(text) {
		g.logger.Info("puzzle answer rejected", zap.String("puzzle", p.Name))
		return Outcome{}, &RestrictedActionError{Action: p.Command, Reason: "That is not right."}
	}
	p.Solved = true
	g.flags[p.SetsFlag] = true
	g.logger.Info("puzzle solved", zap.String("puzzle", p.Name), zap.String("flag", p.SetsFlag))

	msg := p.Message
	if msg == "" {
		msg = "Solved."
	}
	return Outcome{Message: msg}, nil
}

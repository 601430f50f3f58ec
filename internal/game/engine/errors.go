package engine

import (
	"errors"
	"fmt"
)

// ErrGameOver is returned by every mutating operation once the game has ended.
var ErrGameOver = errors.New("the game is over")

// InvalidCommandError reports a command that is not legal at the current
// location. The game state is unchanged and no turn is consumed.
type InvalidCommandError struct {
	Command string
	Reason  string
}

func (e *InvalidCommandError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid command %q", e.Command)
	}
	return fmt.Sprintf("invalid command %q: %s", e.Command, e.Reason)
}

// RestrictedActionError reports a legal command whose preconditions are not
// met. Reason is addressed to the player. The game state is unchanged.
type RestrictedActionError struct {
	Action string
	Reason string
}

func (e *RestrictedActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}

func restricted(action, reason, fallback string) *RestrictedActionError {
	if reason == "" {
		reason = fallback
	}
	return &RestrictedActionError{Action: action, Reason: reason}
}

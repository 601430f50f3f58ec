package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoExit is returned by Navigate when the location has no edge for the verb.
var ErrNoExit = errors.New("no such exit")

// ErrLocked is returned by Navigate when the destination is locked.
var ErrLocked = errors.New("destination is locked")

// MalformedWorldError reports every violation found while loading a world.
// A world that produced one must not be played.
type MalformedWorldError struct {
	Source     string
	Violations []string
}

func (e *MalformedWorldError) Error() string {
	src := e.Source
	if src == "" {
		src = "world"
	}
	return fmt.Sprintf("malformed %s: %s", src, strings.Join(e.Violations, "; "))
}

// UnknownLocationError is returned when a location id does not resolve.
type UnknownLocationError struct {
	ID int
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknown location %d", e.ID)
}

// UnknownItemError is returned when an item name does not resolve.
type UnknownItemError struct {
	Name string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q", e.Name)
}

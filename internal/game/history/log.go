// Package history records the locations a game has passed through and the
// command that led away from each, supporting linear undo and replay.
package history

import "iter"

// Entry is one arrival at a location.
type Entry struct {
	// LocationID is the location arrived at.
	LocationID int
	// Description is the text shown on arrival.
	Description string
	// Command is the command that led away from this entry; empty for the tail.
	Command string
}

// Step is one element of a replay: a location and the command issued there.
type Step struct {
	LocationID int
	Command    string
}

// Log is an ordered list of entries. Entries live in a single slice; the tail is
// entries[n-1] and truncation only shortens n, reusing capacity on the next Append.
//
// A Log has a single owner and is not safe for concurrent use. The zero value is
// an empty log ready for use.
type Log struct {
	entries []Entry
	n       int
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append adds an entry at the tail. If the previous tail has no command yet it
// is backfilled with command, the command that produced the new entry.
//
// Postcondition: Len() grows by one and Tail() is the new entry with an empty Command.
func (l *Log) Append(locationID int, description, command string) {
	if l.n > 0 && l.entries[l.n-1].Command == "" {
		l.entries[l.n-1].Command = command
	}
	e := Entry{LocationID: locationID, Description: description}
	if l.n < len(l.entries) {
		l.entries[l.n] = e
	} else {
		l.entries = append(l.entries, e)
	}
	l.n++
}

// UndoLast removes the tail entry. The new tail's command is cleared since the
// command it recorded has been undone. Undoing an empty log does nothing.
//
// Postcondition: Len() shrinks by one unless the log was empty.
func (l *Log) UndoLast() {
	if l.n == 0 {
		return
	}
	l.n--
	l.entries[l.n] = Entry{}
	if l.n > 0 {
		l.entries[l.n-1].Command = ""
	}
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return l.n
}

// Head returns the first entry.
func (l *Log) Head() (Entry, bool) {
	if l.n == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Tail returns the last entry.
func (l *Log) Tail() (Entry, bool) {
	if l.n == 0 {
		return Entry{}, false
	}
	return l.entries[l.n-1], true
}

// Entries returns a copy of the entries from head to tail.
func (l *Log) Entries() []Entry {
	out := make([]Entry, l.n)
	copy(out, l.entries[:l.n])
	return out
}

// Trail returns the location ids from head to tail.
//
// Postcondition: len(Trail()) == Len().
func (l *Log) Trail() []int {
	ids := make([]int, l.n)
	for i := range l.n {
		ids[i] = l.entries[i].LocationID
	}
	return ids
}

// Replay yields each entry's location and the command issued there, head to
// tail. The sequence is lazy and may be ranged over any number of times; it
// reflects the log as it is when iteration starts.
func (l *Log) Replay() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		n := l.n
		for i := 0; i < n && i < l.n; i++ {
			e := l.entries[i]
			if !yield(Step{LocationID: e.LocationID, Command: e.Command}) {
				return
			}
		}
	}
}

package handlers

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/cory-johannsen/adventure/internal/game/engine"
	"github.com/cory-johannsen/adventure/internal/game/history"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

// MinWidth is the narrowest wrap width a Renderer accepts.
const MinWidth = 20

// Renderer formats game state as text lines. Output uses "\n" line breaks;
// the transport converts them as needed.
type Renderer struct {
	width   int
	palette Palette
}

// NewRenderer creates a Renderer wrapping at width columns.
//
// Postcondition: width is raised to MinWidth when smaller.
func NewRenderer(width int, p Palette) *Renderer {
	return &Renderer{width: max(width, MinWidth), palette: p}
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

func (r *Renderer) wrap(s string) string {
	return wordwrap.String(strings.TrimSpace(s), r.width)
}

// Location renders the location title, text, the items lying there and the
// verbs the player may use, followed by the global menu.
func (r *Renderer) Location(loc *world.Location, text string, menu []string) string {
	var b strings.Builder
	b.WriteString(r.palette.Title(loc.Name))
	b.WriteString("\n")
	b.WriteString(r.palette.Text(r.wrap(text)))
	if items := loc.Items.Names(); len(items) > 0 {
		b.WriteString("\n")
		b.WriteString(r.palette.Notice(r.wrap("You see: " + strings.Join(items, ", "))))
	}
	verbs := append(loc.Verbs(), loc.Special...)
	if len(verbs) > 0 {
		b.WriteString("\n")
		b.WriteString(r.line("Exits and actions", verbs))
	}
	if len(menu) > 0 {
		b.WriteString("\n")
		b.WriteString(r.line("Menu", menu))
	}
	return b.String()
}

func (r *Renderer) line(label string, verbs []string) string {
	styled := make([]string, len(verbs))
	for i, v := range verbs {
		styled[i] = r.palette.Verb(v)
	}
	return wordwrap.String(label+": "+strings.Join(styled, ", "), r.width)
}

// Inventory lists the carried items.
func (r *Renderer) Inventory(items []string) string {
	if len(items) == 0 {
		return "You are not carrying anything."
	}
	return r.wrap("You are carrying: " + strings.Join(items, ", "))
}

// Score reports score and moves; a zero budget is shown without a limit.
func (r *Renderer) Score(score, moves, maxMoves int) string {
	if maxMoves <= 0 {
		return fmt.Sprintf("Score: %d  Moves: %d", score, moves)
	}
	return fmt.Sprintf("Score: %d  Moves: %d of %d", score, moves, maxMoves)
}

// Log lists the history, one numbered line per entry with the command that
// led away from it.
func (r *Renderer) Log(entries []history.Entry, name func(id int) string) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%2d. %s", i+1, name(e.LocationID))
		if e.Command != "" {
			b.WriteString(" -> " + r.palette.Verb(e.Command))
		}
	}
	return b.String()
}

// Message wraps narration.
func (r *Renderer) Message(text string) string {
	return r.palette.Text(r.wrap(text))
}

// Notice renders an informational line such as the echoed command.
func (r *Renderer) Notice(text string) string {
	return r.palette.Notice(text)
}

// Error renders a refusal or an invalid-input line.
func (r *Renderer) Error(text string) string {
	return r.palette.Error(r.wrap(text))
}

// Prompt renders the input prompt.
func (r *Renderer) Prompt(text string) string {
	return r.palette.Prompt(text)
}

// Final renders the closing line for a finished game.
func (r *Renderer) Final(status engine.Status, score, moves int) string {
	var head string
	switch status {
	case engine.Won:
		head = "You won!"
	case engine.Lost:
		head = "You ran out of time. Game over."
	default:
		head = "Thanks for playing."
	}
	return r.palette.Title(head) + "\n" + fmt.Sprintf("Final score: %d in %d moves.", score, moves)
}

// Title renders a heading.
func (r *Renderer) Title(text string) string {
	return r.palette.Title(text)
}

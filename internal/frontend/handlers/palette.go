package handlers

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/adventure/internal/frontend/telnet"
)

// Palette styles each kind of text a Renderer emits.
type Palette struct {
	Title  func(string) string
	Text   func(string) string
	Verb   func(string) string
	Notice func(string) string
	Error  func(string) string
	Prompt func(string) string
}

func plain(s string) string { return s }

// PlainPalette leaves text unstyled.
func PlainPalette() Palette {
	return Palette{Title: plain, Text: plain, Verb: plain, Notice: plain, Error: plain, Prompt: plain}
}

func ansi(color string) func(string) string {
	return func(s string) string { return telnet.Colorize(color, s) }
}

// TelnetPalette styles text with raw ANSI sequences for Telnet clients.
func TelnetPalette() Palette {
	return Palette{
		Title:  ansi(telnet.Bold + telnet.Yellow),
		Text:   ansi(telnet.BrightWhite),
		Verb:   ansi(telnet.Cyan),
		Notice: ansi(telnet.Green),
		Error:  ansi(telnet.Red),
		Prompt: ansi(telnet.Bold + telnet.Cyan),
	}
}

// ConsolePalette styles text for the local terminal with lipgloss, which
// degrades to plain text when the terminal has no color support.
func ConsolePalette() Palette {
	style := func(s lipgloss.Style) func(string) string {
		return func(text string) string { return s.Render(text) }
	}
	return Palette{
		Title:  style(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))),
		Text:   plain,
		Verb:   style(lipgloss.NewStyle().Foreground(lipgloss.Color("14"))),
		Notice: style(lipgloss.NewStyle().Foreground(lipgloss.Color("10"))),
		Error:  style(lipgloss.NewStyle().Foreground(lipgloss.Color("9"))),
		Prompt: style(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))),
	}
}

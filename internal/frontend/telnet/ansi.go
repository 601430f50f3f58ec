// Package telnet serves the game over Telnet.
package telnet

// ANSI SGR sequences used by the telnet palette.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"

	BrightWhite = "\033[97m"
)

// Colorize wraps text in color and a trailing Reset. Empty text stays empty.
func Colorize(color, text string) string {
	if text == "" {
		return ""
	}
	return color + text + Reset
}

// Package console connects a game to the local terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IO reads player lines from an input stream and writes to an output stream.
// When the input is a terminal, ReadPassword switches echo off.
type IO struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// New creates an IO over in and out. in is treated as a terminal when it is
// an *os.File attached to one.
func New(in io.Reader, out io.Writer) *IO {
	c := &IO{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.isTerm = true
	}
	return c
}

// Stdio returns an IO over the process's standard streams.
func Stdio() *IO {
	return New(os.Stdin, os.Stdout)
}

// IsTerminal reports whether input comes from a terminal.
func (c *IO) IsTerminal() bool { return c.isTerm }

// ReadLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (c *IO) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// ReadPassword reads a line without echo on a terminal, and falls back to
// ReadLine otherwise. Input already sitting in the read buffer was typed
// ahead and echoed, so it is consumed before the terminal is read again.
func (c *IO) ReadPassword() (string, error) {
	if !c.isTerm || c.in.Buffered() > 0 {
		return c.ReadLine()
	}
	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// WriteLine writes text and a newline.
func (c *IO) WriteLine(text string) error {
	_, err := fmt.Fprintln(c.out, text)
	return err
}

// WritePrompt writes text without a newline.
func (c *IO) WritePrompt(text string) error {
	_, err := fmt.Fprint(c.out, text)
	return err
}

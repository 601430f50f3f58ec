package telnet

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// MaxLineLength caps a single line of input. Longer lines are discarded and
// the client is asked to resend.
const MaxLineLength = 512

const lineTooLong = "That line was too long; try again."

// Conn is a line-oriented Telnet connection. Negotiation sequences are
// stripped from input and output line endings are CRLF.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. Zero timeouts disable deadlines.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its terminator. Control
// characters other than tab are dropped. A line longer than MaxLineLength is
// discarded with a notice to the client, and reading continues.
//
// Postcondition: Returns the line, or the partial line and an error
// (io.EOF when the client hangs up).
func (c *Conn) ReadLine() (string, error) {
	for {
		line, err := c.readRaw()
		if !errors.Is(err, errLineTooLong) {
			return line, err
		}
		if err := c.WriteLine(lineTooLong); err != nil {
			return "", err
		}
	}
}

var errLineTooLong = errors.New("line too long")

// readRaw reads one line, reporting errLineTooLong once the terminator of an
// overlong line has been consumed.
func (c *Conn) readRaw() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	overflow := false
	end := func() (string, error) {
		if overflow {
			return "", errLineTooLong
		}
		return line.String(), nil
	}
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return end()
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return end()
		case b < 32 && b != '\t':
		case line.Len() < MaxLineLength:
			line.WriteByte(b)
		default:
			overflow = true
		}
	}
}

// skipCommand consumes the rest of a command that began with IAC.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// ReadPassword reads a line with client echo switched off, restoring echo
// afterwards even on error.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.write([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// WriteLine writes text followed by CRLF. Embedded newlines become CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.write([]byte(crlf(text) + "\r\n"))
}

// WritePrompt writes text without a line terminator.
func (c *Conn) WritePrompt(text string) error {
	return c.write([]byte(crlf(text)))
}

func (c *Conn) write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

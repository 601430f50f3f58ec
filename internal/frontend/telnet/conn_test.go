package telnet

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pipeConn returns a Conn over one end of an in-memory pipe and the other end.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, 0, 0), client
}

func feed(client net.Conn, data []byte) {
	go func() {
		_, _ = client.Write(data)
	}()
}

func TestReadLine_Terminators(t *testing.T) {
	for _, input := range []string{"go east\n", "go east\r\n", "go east\r\x00"} {
		c, client := pipeConn(t)
		feed(client, []byte(input))
		line, err := c.ReadLine()
		require.NoError(t, err, "%q", input)
		assert.Equal(t, "go east", line, "%q", input)
	}
}

func TestReadLine_StripsNegotiation(t *testing.T) {
	c, client := pipeConn(t)
	input := []byte{IAC, DO, OptSuppressGoAhead, 'l', 'o', IAC, SB, 24, 0, 'x', IAC, SE, 'o', 'k', '\r', '\n'}
	feed(client, input)
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "look", line)
}

func TestReadLine_DropsControlCharacters(t *testing.T) {
	c, client := pipeConn(t)
	feed(client, []byte("ta\x07ke\tusb\n"))
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "take\tusb", line)
}

func TestReadLine_AcceptsMaxLength(t *testing.T) {
	c, client := pipeConn(t)
	feed(client, []byte(strings.Repeat("a", MaxLineLength)+"\n"))
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, MaxLineLength)
}

func TestReadLine_RejectsOverlongLine(t *testing.T) {
	c, client := pipeConn(t)
	feed(client, []byte(strings.Repeat("a", MaxLineLength+50)+"\r\nlook\r\n"))
	notice := make(chan string, 1)
	go func() {
		got, _ := bufio.NewReader(client).ReadString('\n')
		notice <- got
	}()

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "look", line)
	assert.Equal(t, lineTooLong+"\r\n", <-notice)
}

func TestReadLine_EOF(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("par"))
		client.Close()
	}()
	line, err := c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "par", line)
}

func TestReadPassword_TogglesEcho(t *testing.T) {
	c, client := pipeConn(t)

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 3)
		_, _ = io.ReadFull(client, buf)
		_, _ = client.Write([]byte("secret\r\n"))
		rest := make([]byte, 5)
		_, _ = io.ReadFull(client, rest)
		got <- append(buf, rest...)
	}()

	line, err := c.ReadPassword()
	require.NoError(t, err)
	assert.Equal(t, "secret", line)
	assert.Equal(t, []byte{IAC, WILL, OptEcho, IAC, WONT, OptEcho, '\r', '\n'}, <-got)
}

func TestWriteLine_UsesCRLF(t *testing.T) {
	c, client := pipeConn(t)
	done := make(chan string, 1)
	go func() {
		buf := make([]byte, len("one\r\ntwo\r\n"))
		_, _ = io.ReadFull(client, buf)
		done <- string(buf)
	}()
	require.NoError(t, c.WriteLine("one\ntwo"))
	assert.Equal(t, "one\r\ntwo\r\n", <-done)
}

func TestPropertyCRLF_NoBareNewlines(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z\r\n ]{0,40}`).Draw(t, "s")
		out := crlf(s)
		for i := range len(out) {
			if out[i] == '\n' && (i == 0 || out[i-1] != '\r') {
				t.Fatalf("crlf(%q) = %q has a bare newline", s, out)
			}
		}
	})
}

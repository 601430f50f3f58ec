// Package testutil holds helpers shared by network tests.
package testutil

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a raw TCP client that plays a game over Telnet in tests.
// Negotiation bytes are kept in the transcript; callers match on text.
type TelnetClient struct {
	t    *testing.T
	conn net.Conn
	seen bytes.Buffer
}

// DialTelnet connects to addr and closes the connection when the test ends.
//
// Postcondition: Returns a connected client or fails the test.
func DialTelnet(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// Expect reads until want appears in the unread output and returns the
// output up to and including it. The test fails on timeout.
func (c *TelnetClient) Expect(want string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 1024)
	for {
		if i := strings.Index(c.seen.String(), want); i >= 0 {
			out := c.seen.String()[:i+len(want)]
			c.seen.Next(i + len(want))
			return out
		}
		n, err := c.conn.Read(buf)
		c.seen.Write(buf[:n])
		if err != nil && !strings.Contains(c.seen.String(), want) {
			c.t.Fatalf("waiting for %q: read %q: %v", want, c.seen.String(), err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close hangs up.
func (c *TelnetClient) Close() {
	c.conn.Close()
}

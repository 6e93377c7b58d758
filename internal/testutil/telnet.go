package testutil

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
)

// StartAcceptor serves handler on a loopback port and stops it when the test ends.
//
// Postcondition: Returns the listen address of a running acceptor.
func StartAcceptor(t *testing.T, handler telnet.SessionHandler) string {
	t.Helper()
	acc := telnet.NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	}, handler, zaptest.NewLogger(t))
	go func() { _ = acc.ListenAndServe() }()
	t.Cleanup(acc.Stop)

	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" },
		2*time.Second, 10*time.Millisecond, "telnet acceptor did not start")
	return acc.Addr()
}

const ioTimeout = 5 * time.Second

// TelnetClient plays a session against a running acceptor. Output is
// compared with negotiation and ANSI styling removed.
type TelnetClient struct {
	t    *testing.T
	conn net.Conn
}

// NewTelnetClient dials addr and returns a test client.
//
// Precondition: addr must be a "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, ioTimeout)
	require.NoError(t, err, "dialing %s", addr)
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until substr appears in the plain-text output. Anything
// the server sent after the match in the same read is discarded.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the plain output read by this call, or fails on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	// Filtering the whole capture keeps IAC sequences split across reads intact.
	var raw []byte
	chunk := make([]byte, 1024)
	for {
		n, err := c.conn.Read(chunk)
		raw = append(raw, chunk[:n]...)
		plain := telnet.StripANSI(string(telnet.FilterIAC(raw)))
		if strings.Contains(plain, substr) {
			return plain
		}
		if err != nil {
			c.t.Fatalf("waiting for %q: read %q: %v", substr, plain, err)
		}
	}
}

// Send writes text as one CRLF-terminated line.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	_, err := c.conn.Write([]byte(text + "\r\n"))
	require.NoError(c.t, err, "sending %q", text)
}

// Answer waits for prompt and replies with text, returning what preceded the reply.
func (c *TelnetClient) Answer(prompt, text string) string {
	c.t.Helper()
	out := c.ReadUntil(prompt, ioTimeout)
	c.Send(text)
	return out
}

// Close hangs up.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}

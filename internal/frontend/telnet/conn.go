package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	Dont byte = 254
	Do   byte = 253
	Wont byte = 252
	Will byte = 251
	SB   byte = 250
	NOP  byte = 241
	SE   byte = 240
)

// Telnet option codes seen during negotiation.
const (
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptNAWS            byte = 31
	OptLinemode        byte = 34
)

const (
	backspace byte = 0x08
	del       byte = 0x7f
)

// decodeState is the position of a decoder inside a command sequence.
type decodeState int

const (
	inData decodeState = iota
	afterIAC
	afterVerb
	inSub
	inSubAfterIAC
)

// decoder strips telnet commands from a byte stream one byte at a time, so
// sequences split across reads are still removed.
type decoder struct {
	state decodeState
}

// next consumes b and returns the data byte it yields, if any.
func (d *decoder) next(b byte) (byte, bool) {
	switch d.state {
	case afterIAC:
		d.state = inData
		switch b {
		case Will, Wont, Do, Dont:
			d.state = afterVerb
		case SB:
			d.state = inSub
		case IAC:
			return IAC, true
		}
		return 0, false
	case afterVerb:
		d.state = inData
		return 0, false
	case inSub:
		if b == IAC {
			d.state = inSubAfterIAC
		}
		return 0, false
	case inSubAfterIAC:
		d.state = inSub
		if b == SE {
			d.state = inData
		}
		return 0, false
	}
	if b == IAC {
		d.state = afterIAC
		return 0, false
	}
	return b, true
}

// FilterIAC removes telnet command sequences from input. An escaped IAC
// (IAC IAC) yields one 0xFF data byte.
//
// Postcondition: len(result) <= len(input).
func FilterIAC(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if v, ok := d.next(b); ok {
			out = append(out, v)
		}
	}
	return out
}

// Conn is one player's telnet connection: command lines in, screen text out.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	dec    decoder
	// afterCR is set when the last line ended on CR, so a following LF or
	// NUL belongs to that terminator.
	afterCR bool

	// mu serializes writes so a rendered frame is never interleaved.
	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. Zero timeouts disable the corresponding deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead. Echo stays with the client so
// typed commands remain visible.
func (c *Conn) Negotiate() error {
	return c.send([]byte{IAC, Will, OptSuppressGoAhead})
}

// ReadLine returns the next command line without its terminator. Telnet
// commands and control bytes are dropped; backspace and DEL erase the
// previous character. CR LF, CR NUL, bare CR and bare LF all end a line.
//
// Postcondition: On error the partial line read so far is returned with it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var line []byte
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return string(line), err
		}
		b, ok := c.dec.next(raw)
		if !ok {
			continue
		}
		afterCR := c.afterCR
		c.afterCR = false
		switch {
		case afterCR && (b == '\n' || b == 0):
		case b == '\n':
			return string(line), nil
		case b == '\r':
			c.afterCR = true
			return string(line), nil
		case b == backspace || b == del:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b < ' ' && b != '\t', b == IAC:
		default:
			line = append(line, b)
		}
	}
}

// WriteLine sends text followed by CR LF.
func (c *Conn) WriteLine(text string) error {
	return c.send([]byte(text + "\r\n"))
}

// WriteLines sends every line, each followed by CR LF, in a single write.
func (c *Conn) WriteLines(lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return c.send([]byte(b.String()))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.send([]byte(prompt))
}

func (c *Conn) send(p []byte) error {
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

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// Package telnet provides the Telnet transport and ANSI styling used to
// play battles over a network connection.
package telnet

import "strings"

// SGR escape sequences used by the map scene and dialogs.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Reverse = "\033[7m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	BrightBlack = "\033[90m"
	BrightCyan  = "\033[96m"
)

// Colorize wraps text in style and a trailing Reset. Several styles may be
// concatenated, e.g. Bold+Red.
func Colorize(style, text string) string {
	return style + text + Reset
}

// StripANSI removes CSI escape sequences (ESC [ params final) so the
// printable width of a rendered row can be measured. An unterminated
// sequence is kept as text.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' || i+1 >= len(s) || s[i+1] != '[' {
			b.WriteByte(s[i])
			continue
		}
		end := i + 2
		for end < len(s) && (s[end] < 0x40 || s[end] > 0x7e) {
			end++
		}
		if end == len(s) {
			b.WriteString(s[i:])
			break
		}
		i = end
	}
	return b.String()
}

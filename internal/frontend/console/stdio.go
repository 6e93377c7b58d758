package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Stdio is a LineIO over a reader and a writer, used by the local runner.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdio wraps r and w.
func NewStdio(r io.Reader, w io.Writer) *Stdio {
	return &Stdio{in: bufio.NewReader(r), out: w}
}

// ReadLine returns the next input line without its line ending.
//
// Postcondition: returns io.EOF only when no further text is available.
func (s *Stdio) ReadLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WriteLine writes text followed by a newline.
func (s *Stdio) WriteLine(text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}

// WritePrompt writes prompt without a newline.
func (s *Stdio) WritePrompt(prompt string) error {
	_, err := fmt.Fprint(s.out, prompt)
	return err
}

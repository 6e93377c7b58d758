package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command word and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command, lowercased.
	Args []string
}

// Parse splits a text line into a command and arguments. Commas are treated
// as spaces so "select 3,4" and "select 3 4" read the same.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(line, ",", " ")))
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: fields[0]}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// Coords reads the first two arguments as an x,y pair.
//
// Postcondition: Returns an error naming the usage when fewer than two
// arguments are present or either is not an integer.
func (p ParseResult) Coords() (x, y int, err error) {
	if len(p.Args) < 2 {
		return 0, 0, fmt.Errorf("%s needs two coordinates, e.g. %q", p.Command, p.Command+" 3 4")
	}
	x, err = strconv.Atoi(p.Args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a column number", p.Args[0])
	}
	y, err = strconv.Atoi(p.Args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a row number", p.Args[1])
	}
	return x, y, nil
}

// Package console implements the text collaborators of a battle: a line
// based command input, yes/no dialogs, and an ANSI map renderer. The same
// Terminal serves a Telnet connection and a local stdio session.
package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
)

// ErrQuit is returned by every collaborator method once the player types quit.
var ErrQuit = errors.New("player quit")

// errHandled marks input that produced output but no event.
var errHandled = errors.New("handled")

// LineIO is a line oriented text channel. *telnet.Conn satisfies it.
type LineIO interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// frameWriter is implemented by channels that can write a frame atomically.
type frameWriter interface {
	WriteLines(lines []string) error
}

// Terminal turns typed commands into tactics events and renders views as
// text. It implements tactics.Input, tactics.Dialog and tactics.Scene.
type Terminal struct {
	io    LineIO
	reg   *command.Registry
	color bool
}

// NewTerminal creates a Terminal over io. color enables ANSI styling.
//
// Precondition: io must be non-nil.
func NewTerminal(io LineIO, color bool) *Terminal {
	return &Terminal{io: io, reg: command.DefaultRegistry(), color: color}
}

// Frontend bundles the terminal as all three collaborators.
func (t *Terminal) Frontend() tactics.Frontend {
	return tactics.Frontend{Input: t, Dialog: t, Scene: t}
}

// Next reads commands until one maps to an event. Unknown or malformed
// commands print a hint and wait again.
//
// Postcondition: Returns ErrQuit after "quit", ctx.Err() once ctx is done,
// or the read error of the underlying channel.
func (t *Terminal) Next(ctx context.Context, controls []combat.Control) (tactics.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return tactics.Event{}, err
		}
		if err := t.io.WritePrompt(t.style(telnet.Bold, "> ")); err != nil {
			return tactics.Event{}, err
		}
		line, err := t.io.ReadLine()
		if err != nil {
			return tactics.Event{}, err
		}
		ev, err := t.translate(command.Parse(line), controls)
		switch {
		case err == nil:
			return ev, nil
		case errors.Is(err, ErrQuit):
			return tactics.Event{}, err
		case errors.Is(err, errHandled):
			continue
		}
		if werr := t.io.WriteLine(t.style(telnet.Yellow, err.Error())); werr != nil {
			return tactics.Event{}, werr
		}
	}
}

func (t *Terminal) translate(res command.ParseResult, controls []combat.Control) (tactics.Event, error) {
	if res.Command == "" {
		return tactics.Event{}, errHandled
	}
	if n, err := strconv.Atoi(res.Command); err == nil {
		if controls == nil {
			return tactics.Event{}, fmt.Errorf("there is no menu to pick %d from", n)
		}
		if n < 1 || n > len(controls) {
			return tactics.Event{}, fmt.Errorf("pick a number between 1 and %d", len(controls))
		}
		return actionEvent(controls[n-1].Action), nil
	}
	cmd, ok := t.reg.Resolve(res.Command)
	if !ok {
		return tactics.Event{}, fmt.Errorf("unknown command %q, type help for a list", res.Command)
	}

	switch cmd.Handler {
	case command.HandlerSelect, command.HandlerHover:
		if cmd.Handler == command.HandlerSelect && res.Command == "s" && len(res.Args) == 0 {
			return tactics.Event{Kind: tactics.EventScroll, Direction: grid.South}, nil
		}
		x, y, err := res.Coords()
		if err != nil {
			return tactics.Event{}, err
		}
		kind := tactics.EventSelect
		if cmd.Handler == command.HandlerHover {
			kind = tactics.EventHover
		}
		return tactics.Event{Kind: kind, Point: grid.Point{X: x, Y: y}}, nil
	case command.HandlerScroll:
		dir, _ := grid.ParseDirection(cmd.Name)
		return tactics.Event{Kind: tactics.EventScroll, Direction: dir}, nil
	case command.HandlerHold:
		if len(res.Args) == 0 {
			return tactics.Event{}, fmt.Errorf("hold needs a direction, e.g. %q", "hold north")
		}
		dir, ok := grid.ParseDirection(res.Args[0])
		if !ok {
			return tactics.Event{}, fmt.Errorf("%q is not a direction", res.Args[0])
		}
		return tactics.Event{Kind: tactics.EventHold, Direction: dir}, nil
	case command.HandlerConfirm:
		return tactics.Event{Kind: tactics.EventConfirm}, nil
	case command.HandlerBack:
		return tactics.Event{Kind: tactics.EventBack}, nil
	case command.HandlerYes:
		return tactics.Event{Kind: tactics.EventYes}, nil
	case command.HandlerNo:
		return tactics.Event{Kind: tactics.EventNo}, nil
	case command.HandlerAction:
		if controls == nil {
			return tactics.Event{}, fmt.Errorf("%s can only be chosen from the action menu", cmd.Name)
		}
		return actionEvent(cmd.Action), nil
	case command.HandlerHelp:
		if err := t.writeHelp(controls); err != nil {
			return tactics.Event{}, err
		}
		return tactics.Event{}, errHandled
	case command.HandlerQuit:
		return tactics.Event{}, ErrQuit
	}
	return tactics.Event{}, fmt.Errorf("command %q is not usable here", cmd.Name)
}

func actionEvent(a combat.ActionType) tactics.Event {
	if a == combat.ActionBack {
		return tactics.Event{Kind: tactics.EventBack}
	}
	return tactics.Event{Kind: tactics.EventAction, Action: a}
}

func (t *Terminal) writeHelp(controls []combat.Control) error {
	var lines []string
	cats := t.reg.CommandsByCategory()
	names := make([]string, 0, len(cats))
	for c := range cats {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, cat := range names {
		if cat == command.CategoryAction && controls == nil {
			continue
		}
		lines = append(lines, t.style(telnet.Bold, cat+":"))
		for _, cmd := range cats[cat] {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			if len(cmd.Aliases) > 0 {
				usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			lines = append(lines, fmt.Sprintf("  %-32s %s", usage, cmd.Help))
		}
	}
	if controls != nil {
		lines = append(lines, "Pick an action by name or by its number.")
	}
	return t.writeLines(lines)
}

// Confirm asks prompt until the player answers yes or no. back counts as no.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := t.io.WritePrompt(t.style(telnet.BrightCyan, prompt+" (yes/no) ")); err != nil {
			return false, err
		}
		line, err := t.io.ReadLine()
		if err != nil {
			return false, err
		}
		res := command.Parse(line)
		if cmd, ok := t.reg.Resolve(res.Command); ok {
			switch cmd.Handler {
			case command.HandlerYes:
				return true, nil
			case command.HandlerNo, command.HandlerBack:
				return false, nil
			case command.HandlerQuit:
				return false, ErrQuit
			}
		}
		if err := t.io.WriteLine("Please answer yes or no."); err != nil {
			return false, err
		}
	}
}

// Message shows text to the player.
func (t *Terminal) Message(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.io.WriteLine(t.style(telnet.Yellow, text))
}

// Say writes plain narration without styling.
func (t *Terminal) Say(format string, args ...any) error {
	return t.io.WriteLine(fmt.Sprintf(format, args...))
}

// Draw renders v as one text frame.
func (t *Terminal) Draw(v tactics.View) error {
	return t.writeLines(Render(v, t.color))
}

func (t *Terminal) writeLines(lines []string) error {
	if fw, ok := t.io.(frameWriter); ok {
		return fw.WriteLines(lines)
	}
	for _, l := range lines {
		if err := t.io.WriteLine(l); err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) style(color, text string) string {
	if !t.color {
		return text
	}
	return telnet.Colorize(color, text)
}

package tactics_test

import (
	"context"
	"io"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
)

// scriptedInput replays events, then reports io.EOF.
type scriptedInput struct {
	events   []tactics.Event
	controls [][]combat.Control
}

func (s *scriptedInput) Next(_ context.Context, controls []combat.Control) (tactics.Event, error) {
	s.controls = append(s.controls, controls)
	if len(s.events) == 0 {
		return tactics.Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

// scriptedDialog answers prompts from a queue; an empty queue answers no.
type scriptedDialog struct {
	answers  []bool
	prompts  []string
	messages []string
}

func (d *scriptedDialog) Confirm(_ context.Context, prompt string) (bool, error) {
	d.prompts = append(d.prompts, prompt)
	if len(d.answers) == 0 {
		return false, nil
	}
	a := d.answers[0]
	d.answers = d.answers[1:]
	return a, nil
}

func (d *scriptedDialog) Message(_ context.Context, text string) error {
	d.messages = append(d.messages, text)
	return nil
}

type countingScene struct {
	frames []tactics.View
}

func (c *countingScene) Draw(v tactics.View) error {
	c.frames = append(c.frames, v)
	return nil
}

func frontend(events []tactics.Event, answers ...bool) (tactics.Frontend, *scriptedDialog, *countingScene) {
	d := &scriptedDialog{answers: answers}
	sc := &countingScene{}
	return tactics.Frontend{Input: &scriptedInput{events: events}, Dialog: d, Scene: sc}, d, sc
}

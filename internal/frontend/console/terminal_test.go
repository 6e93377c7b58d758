package console

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
)

func TestTerminal_Next_Translates(t *testing.T) {
	cases := []struct {
		line string
		want tactics.Event
	}{
		{"select 3 4", tactics.Event{Kind: tactics.EventSelect, Point: grid.Point{X: 3, Y: 4}}},
		{"s 1,2", tactics.Event{Kind: tactics.EventSelect, Point: grid.Point{X: 1, Y: 2}}},
		{"look 0 1", tactics.Event{Kind: tactics.EventHover, Point: grid.Point{X: 0, Y: 1}}},
		{"n", tactics.Event{Kind: tactics.EventScroll, Direction: grid.North}},
		{"s", tactics.Event{Kind: tactics.EventScroll, Direction: grid.South}},
		{"left", tactics.Event{Kind: tactics.EventScroll, Direction: grid.West}},
		{"hold east", tactics.Event{Kind: tactics.EventHold, Direction: grid.East}},
		{"confirm", tactics.Event{Kind: tactics.EventConfirm}},
		{"cancel", tactics.Event{Kind: tactics.EventBack}},
		{"Y", tactics.Event{Kind: tactics.EventYes}},
		{"no", tactics.Event{Kind: tactics.EventNo}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			term := NewTerminal(newScriptIO(tc.line), false)
			ev, err := term.Next(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ev)
		})
	}
}

func TestTerminal_Next_ActionMenu(t *testing.T) {
	controls := combat.Controls([]combat.ActionType{combat.ActionMove, combat.ActionDefend, combat.ActionBack}, grid.Point{})

	term := NewTerminal(newScriptIO("2"), false)
	ev, err := term.Next(context.Background(), controls)
	require.NoError(t, err)
	assert.Equal(t, tactics.Event{Kind: tactics.EventAction, Action: combat.ActionDefend}, ev)

	term = NewTerminal(newScriptIO("3"), false)
	ev, err = term.Next(context.Background(), controls)
	require.NoError(t, err)
	assert.Equal(t, tactics.EventBack, ev.Kind, "the back entry maps to a back event")

	term = NewTerminal(newScriptIO("move"), false)
	ev, err = term.Next(context.Background(), controls)
	require.NoError(t, err)
	assert.Equal(t, combat.ActionMove, ev.Action)
}

func TestTerminal_Next_RepromptsOnBadInput(t *testing.T) {
	sio := newScriptIO("dance", "", "hold", "9", "fight", "select 1 1")
	term := NewTerminal(sio, false)

	ev, err := term.Next(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, tactics.EventSelect, ev.Kind)

	out := sio.text()
	assert.Contains(t, out, `unknown command "dance"`)
	assert.Contains(t, out, "hold needs a direction")
	assert.Contains(t, out, "no menu to pick 9 from")
	assert.Contains(t, out, "fight can only be chosen from the action menu")
	assert.Equal(t, 6, sio.prompts)
}

func TestTerminal_Next_OutOfRangePick(t *testing.T) {
	controls := combat.Controls([]combat.ActionType{combat.ActionDefend, combat.ActionBack}, grid.Point{})
	sio := newScriptIO("5", "1")
	ev, err := NewTerminal(sio, false).Next(context.Background(), controls)
	require.NoError(t, err)
	assert.Equal(t, combat.ActionDefend, ev.Action)
	assert.Contains(t, sio.text(), "pick a number between 1 and 2")
}

func TestTerminal_Next_Help(t *testing.T) {
	sio := newScriptIO("help", "yes")
	_, err := NewTerminal(sio, false).Next(context.Background(), nil)
	require.NoError(t, err)
	out := sio.text()
	assert.Contains(t, out, "cursor:")
	assert.Contains(t, out, "select <x> <y>")
	assert.NotContains(t, out, "action:", "action commands are only listed with a menu")
}

func TestTerminal_Next_QuitAndEOF(t *testing.T) {
	_, err := NewTerminal(newScriptIO("quit"), false).Next(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQuit)

	_, err = NewTerminal(newScriptIO(), false).Next(context.Background(), nil)
	assert.ErrorIs(t, err, io.EOF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewTerminal(newScriptIO("n"), false).Next(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminal_Confirm(t *testing.T) {
	cases := []struct {
		lines []string
		want  bool
		err   error
	}{
		{[]string{"yes"}, true, nil},
		{[]string{"y"}, true, nil},
		{[]string{"no"}, false, nil},
		{[]string{"back"}, false, nil},
		{[]string{"maybe", "y"}, true, nil},
		{[]string{"q"}, false, ErrQuit},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.lines, ","), func(t *testing.T) {
			sio := newScriptIO(tc.lines...)
			got, err := NewTerminal(sio, false).Confirm(context.Background(), "Really?")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.lines), sio.prompts)
		})
	}

	sio := newScriptIO("maybe", "no")
	_, err := NewTerminal(sio, false).Confirm(context.Background(), "Really?")
	require.NoError(t, err)
	assert.Contains(t, sio.text(), "Please answer yes or no.")
}

func testMap(t *testing.T) *grid.Map {
	t.Helper()
	m, err := grid.ParseLayout([]string{
		"#####",
		"#..X#",
		"#.%.#",
		"#####",
	}, 2)
	require.NoError(t, err)
	require.True(t, m.Put(grid.Point{X: 1, Y: 1}, grid.Player, 0))
	require.True(t, m.Put(grid.Point{X: 3, Y: 2}, grid.Enemy, 0))
	return m
}

func TestRender_Plain(t *testing.T) {
	m := testMap(t)
	players := combat.Roster{{Class: "warrior", Name: "Alys", Health: 7, MaxHealth: 10}}
	opponents := combat.Roster{{Class: "goblin", Name: "Goblin", Health: 4, MaxHealth: 4}}
	v := tactics.View{
		Title:     "Alys",
		Map:       m,
		Players:   players,
		Opponents: opponents,
		Marks:     map[grid.Point]string{{X: 2, Y: 1}: "1"},
		Cursor:    grid.Point{X: 1, Y: 1},
		Preview:   "Goblin 4/4",
		Controls:  combat.Controls([]combat.ActionType{combat.ActionDefend, combat.ActionBack}, grid.Point{}),
	}

	got := Render(v, false)
	want := []string{
		"Alys",
		"    01234",
		"  0 #####",
		"  1 #11X#",
		"  2 #.%a#",
		"  3 #####",
		"Goblin 4/4",
		"1 Alys 7/10 at (1,1)",
		"a Goblin 4/4 at (3,2)",
		"Actions: 1) defend  2) back",
	}
	assert.Equal(t, want, got)
}

func TestRender_ColorMarksCursor(t *testing.T) {
	m := testMap(t)
	lines := Render(tactics.View{Map: m, Cursor: grid.Point{X: 2, Y: 1}}, true)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "\x1b[7m.")
	assert.NotEqual(t, stripLines(lines), lines)
}

func stripLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = telnet.StripANSI(l)
	}
	return out
}

func TestRender_ColorStripsToPlain(t *testing.T) {
	m := testMap(t)
	v := tactics.View{Title: "Map", Map: m}
	assert.Equal(t, Render(v, false), stripLines(Render(v, true)))
}

func TestRender_Property_RowsMatchView(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 30).Draw(t, "w")
		h := rapid.IntRange(1, 20).Draw(t, "h")
		m, err := grid.New(w, h)
		require.NoError(t, err)
		vw := rapid.IntRange(1, w).Draw(t, "vw")
		vh := rapid.IntRange(1, h).Draw(t, "vh")
		m.SetView(vw, vh)

		lines := Render(tactics.View{Map: m}, false)
		require.Len(t, lines, vh+1)
		for _, l := range lines[1:] {
			assert.Len(t, l, 4+vw)
			assert.NotContains(t, l, "\x1b")
		}
	})
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, '1', PlayerGlyph(0))
	assert.Equal(t, '9', PlayerGlyph(8))
	assert.Equal(t, '@', PlayerGlyph(9))
	assert.Equal(t, 'a', EnemyGlyph(0))
	assert.Equal(t, 'z', EnemyGlyph(25))
	assert.Equal(t, '&', EnemyGlyph(26))
}

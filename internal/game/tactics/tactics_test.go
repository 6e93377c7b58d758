package tactics_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
)

func newSession(t require.TestingT) *battle.Session {
	m, err := grid.ParseLayout([]string{
		"oo....",
		"......",
		"...ss.",
		"#....X",
	}, 1)
	require.NoError(t, err)
	m.SetView(4, 3)
	return &battle.Session{
		Map: m,
		Party: &battle.Party{Members: combat.Roster{
			{Class: "warrior", Name: "Warrior", Health: 8, MaxHealth: 8},
			{Class: "mage", Name: "Mage", Health: 5, MaxHealth: 5},
			{Class: "ghost", Name: "Ghost", Health: 0, MaxHealth: 5},
		}},
		Opponents: &battle.Opponents{Members: combat.Roster{
			{Class: "orc", Name: "Orc", Side: combat.SideOpponent, Health: 6, MaxHealth: 6},
			{Class: "bat", Name: "Bat", Side: combat.SideOpponent, Health: 2, MaxHealth: 2, Target: combat.TargetRangedOnly},
		}},
		Conditions: battle.Conditions{battle.Tactics: true},
		Tracer:     battle.NopTracer(),
	}
}

func sel(x, y int) tactics.Event {
	return tactics.Event{Kind: tactics.EventSelect, Point: grid.Point{X: x, Y: y}}
}

func ev(k tactics.EventKind) tactics.Event { return tactics.Event{Kind: k} }

func TestPlacement_ConfirmGate(t *testing.T) {
	s := newSession(t)
	p := tactics.NewPlacement(s, 1)
	require.Equal(t, 2, p.Required(), "dead members are not placed")

	out := p.Handle(sel(2, 1))
	assert.Empty(t, out.Message)
	out = p.Handle(ev(tactics.EventConfirm))
	assert.Contains(t, out.Message, "Place all 2")
	assert.Equal(t, tactics.Selecting, p.State())

	p.Handle(sel(3, 1))
	out = p.Handle(ev(tactics.EventConfirm))
	assert.NotEmpty(t, out.Prompt)
	assert.Equal(t, tactics.Confirming, p.State())

	p.Handle(ev(tactics.EventNo))
	assert.Equal(t, tactics.Selecting, p.State())
	p.Handle(ev(tactics.EventConfirm))
	p.Handle(ev(tactics.EventYes))
	require.Equal(t, tactics.Done, p.State())

	require.NoError(t, p.Commit())
	assert.Equal(t, []grid.Point{{X: 2, Y: 1}, {X: 3, Y: 1}}, s.Map.Origins)
	assert.Equal(t, 0, s.Map.Count(grid.Enemy), "preview opponents are discarded")
	assert.Equal(t, 0, s.Map.Count(grid.Player))
}

func TestPlacement_AwayMembersArriveLater(t *testing.T) {
	s := newSession(t)
	s.Party.Members[1].Status.Apply(status.Away, 2)
	p := tactics.NewPlacement(s, 1)
	assert.Equal(t, 1, p.Required())

	p.Handle(sel(2, 1))
	p.Handle(ev(tactics.EventConfirm))
	assert.Equal(t, tactics.Confirming, p.State())
}

func TestPlacement_TracesOpponentPreviewShortfall(t *testing.T) {
	s := newSession(t)
	s.Opponents.Members = append(s.Opponents.Members,
		combat.Combatant{Class: "orc", Name: "Orc", Side: combat.SideOpponent, Health: 6, MaxHealth: 6})
	core, logs := observer.New(zapcore.DebugLevel)
	s.Tracer = battle.NewTracer(zap.New(core))

	tactics.NewPlacement(s, 1)
	entries := logs.FilterMessage("opponent preview incomplete").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "spawn")
}

func TestPlacement_ToggleRewindsCounter(t *testing.T) {
	s := newSession(t)
	p := tactics.NewPlacement(s, 1)
	p.Handle(sel(0, 0))
	p.Handle(sel(1, 0))
	assert.Equal(t, 2, p.Placed())
	assert.Equal(t, grid.Point{X: 1, Y: 0}, s.Map.Find(grid.Player, 1))

	p.Handle(sel(0, 0))
	assert.Equal(t, 1, p.Placed())
	assert.Equal(t, grid.Point{X: 1, Y: 0}, s.Map.Find(grid.Player, 0), "remaining cells shift to earlier members")
	assert.True(t, s.Map.Find(grid.Player, 1).IsNone())

	out := p.Handle(sel(3, 2))
	assert.NotEmpty(t, out.Message, "spawn cell holds a previewed opponent")
	out = p.Handle(sel(0, 3))
	assert.NotEmpty(t, out.Message, "walls are not free")

	p.Handle(sel(2, 0))
	out = p.Handle(sel(4, 0))
	assert.NotEmpty(t, out.Message, "all members already placed")

	p.Handle(ev(tactics.EventBack))
	assert.Equal(t, 0, p.Placed())
	assert.Equal(t, 0, s.Map.Count(grid.Player))
	assert.ErrorIs(t, p.Commit(), tactics.ErrNotDone)
}

func TestPlacement_ScrollMovesViewportOnly(t *testing.T) {
	s := newSession(t)
	p := tactics.NewPlacement(s, 1)
	p.Handle(tactics.Event{Kind: tactics.EventScroll, Direction: grid.East})
	assert.Equal(t, 1, s.Map.View.X)
	p.Handle(tactics.Event{Kind: tactics.EventHold, Direction: grid.East})
	assert.Equal(t, 2, s.Map.View.X, "clamped to width minus view")
	p.Handle(tactics.Event{Kind: tactics.EventHover, Point: grid.Point{X: 3, Y: 2}})
	assert.Equal(t, 0, p.Placed())
}

func TestRunPlacement_Commits(t *testing.T) {
	s := newSession(t)
	fe, d, sc := frontend([]tactics.Event{
		ev(tactics.EventConfirm),
		sel(2, 1), sel(3, 1),
		ev(tactics.EventConfirm),
	}, true)
	require.NoError(t, tactics.RunPlacement(context.Background(), s, fe, 1))
	assert.Equal(t, []grid.Point{{X: 2, Y: 1}, {X: 3, Y: 1}}, s.Map.Origins)
	assert.Len(t, d.messages, 1)
	assert.Len(t, d.prompts, 1)
	assert.NotEmpty(t, sc.frames)
}

func TestRunPlacement_InputFailureRestores(t *testing.T) {
	s := newSession(t)
	before := s.Map.Clone()
	fe, _, _ := frontend([]tactics.Event{sel(2, 1), {Kind: tactics.EventScroll, Direction: grid.South}})
	err := tactics.RunPlacement(context.Background(), s, fe, 1)
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, s.Map.Equal(before))
}

func TestReinforcement_Flow(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 2, Y: 1}, grid.Player, 0))
	s.Party.Members[1].Status.Apply(status.Away, 2)

	_, err := tactics.NewReinforcement(s, "ghost", 1)
	assert.ErrorIs(t, err, tactics.ErrNoReinforcement)

	r, err := tactics.NewReinforcement(s, "mage", 1)
	require.NoError(t, err)
	out := r.Handle(sel(5, 0))
	assert.NotEmpty(t, out.Message, "not beside an ally")

	out = r.Handle(sel(2, 0))
	require.NotEmpty(t, out.Prompt)
	r.Handle(ev(tactics.EventNo))
	assert.True(t, s.Map.Find(grid.Player, 1).IsNone())

	r.Handle(sel(3, 1))
	r.Handle(ev(tactics.EventYes))
	require.NoError(t, r.Commit())
	assert.Equal(t, grid.Point{X: 3, Y: 1}, s.Map.Find(grid.Player, 1))
	assert.False(t, s.Party.Members[1].IsAway())
}

func TestRunReinforcement_BackRestores(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 2, Y: 1}, grid.Player, 0))
	before := s.Map.Clone()
	fe, _, _ := frontend([]tactics.Event{sel(2, 0), ev(tactics.EventBack)}, false)
	ok, err := tactics.RunReinforcement(context.Background(), s, "mage", fe, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.Map.Equal(before))

	fe, d, _ := frontend(nil)
	ok, err = tactics.RunReinforcement(context.Background(), s, "bard", fe, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, d.messages, 1)
}

func TestTarget_CombatantMode(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 1, Y: 1}, grid.Enemy, 0))
	require.True(t, s.Map.Put(grid.Point{X: 2, Y: 1}, grid.Enemy, 1))
	require.True(t, s.Map.Put(grid.Point{X: 0, Y: 1}, grid.Player, 0))

	melee := tactics.NewTarget(s, tactics.ModeCombatant(combat.SideOpponent, false), 1)
	assert.True(t, melee.Matches(grid.Point{X: 1, Y: 1}))
	assert.False(t, melee.Matches(grid.Point{X: 2, Y: 1}), "bat is ranged-only")
	assert.False(t, melee.Matches(grid.Point{X: 0, Y: 1}), "wrong side")

	ranged := tactics.NewTarget(s, tactics.ModeCombatant(combat.SideOpponent, true), 1)
	assert.True(t, ranged.Matches(grid.Point{X: 2, Y: 1}))

	out := melee.Handle(sel(2, 1))
	assert.NotEmpty(t, out.Message)
	out = melee.Handle(sel(1, 1))
	assert.Contains(t, out.Prompt, "Orc 6/6")
	melee.Handle(ev(tactics.EventYes))
	assert.Equal(t, grid.Point{X: 1, Y: 1}, melee.Result())
}

func TestTarget_CellModeNeedsEmptyCell(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 1, Y: 1}, grid.Enemy, 0))
	require.True(t, s.Map.Put(grid.Point{X: 2, Y: 1}, grid.Player, 0))
	require.True(t, s.Map.PutObstacle(grid.Point{X: 3, Y: 1}, 2))

	target := tactics.NewTarget(s, tactics.ModeCell, 1)
	for _, p := range []grid.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 0, Y: 3}, {X: 5, Y: 3}} {
		assert.False(t, target.Matches(p), "cell %s", p)
	}
	assert.True(t, target.Matches(grid.Point{X: 4, Y: 1}))

	out := target.Handle(sel(1, 1))
	assert.NotEmpty(t, out.Message)
	assert.Equal(t, tactics.Selecting, target.State())

	fe, d, _ := frontend([]tactics.Event{sel(1, 1), sel(2, 1), sel(3, 1), sel(4, 1)}, true)
	p, err := tactics.RunTarget(context.Background(), s, tactics.ModeCell, fe, 1)
	require.NoError(t, err)
	assert.Equal(t, grid.Point{X: 4, Y: 1}, p)
	assert.Len(t, d.messages, 3)
}

func TestRunTarget_Outcomes(t *testing.T) {
	s := newSession(t)
	before := s.Map.Clone()

	fe, _, _ := frontend([]tactics.Event{
		{Kind: tactics.EventScroll, Direction: grid.South},
		sel(0, 3),
		sel(2, 2),
	}, true)
	p, err := tactics.RunTarget(context.Background(), s, tactics.ModeCell, fe, 1)
	require.NoError(t, err)
	assert.Equal(t, grid.Point{X: 2, Y: 2}, p)
	assert.True(t, s.Map.Equal(before))

	fe, _, _ = frontend([]tactics.Event{sel(2, 2), ev(tactics.EventBack)}, false)
	p, err = tactics.RunTarget(context.Background(), s, tactics.ModeCell, fe, 1)
	require.NoError(t, err)
	assert.True(t, p.IsNone())
	assert.True(t, s.Map.Equal(before))
}

func TestDescribe(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 1, Y: 1}, grid.Enemy, 0))
	s.Opponents.Members[0].Status.Apply(status.Entangled, 1)
	require.True(t, s.Map.PutObstacle(grid.Point{X: 4, Y: 1}, 2))
	assert.Equal(t, "Orc 6/6 [entangled]", tactics.Describe(s, grid.Point{X: 1, Y: 1}))
	assert.Equal(t, "exit", tactics.Describe(s, grid.Point{X: 5, Y: 3}))
	assert.Equal(t, "wall", tactics.Describe(s, grid.Point{X: 0, Y: 3}))
	assert.Equal(t, "obstacle (2 rounds)", tactics.Describe(s, grid.Point{X: 4, Y: 1}))
	assert.Equal(t, "", tactics.Describe(s, grid.Point{X: 2, Y: 2}))
	assert.Equal(t, "", tactics.Describe(s, grid.NoPoint))
}

func TestChooseAction(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Map.Put(grid.Point{X: 0, Y: 1}, grid.Player, 0))
	in := &scriptedInput{events: []tactics.Event{
		{Kind: tactics.EventAction, Action: combat.ActionFight},
		{Kind: tactics.EventAction, Action: combat.ActionFlee},
	}}
	d := &scriptedDialog{}
	fe := tactics.Frontend{Input: in, Dialog: d, Scene: &countingScene{}}
	a, err := tactics.ChooseAction(context.Background(), s, combat.SidePlayer, 0, false, fe)
	require.NoError(t, err)
	assert.Equal(t, combat.ActionFlee, a, "no hostile is adjacent and the map has an exit")
	assert.Len(t, d.messages, 1, "fight needs an adjacent hostile")
	require.NotEmpty(t, in.controls)
	assert.NotEmpty(t, in.controls[0])
}

func drawEvent(t *rapid.T, i int) tactics.Event {
	kind := tactics.EventKind(rapid.IntRange(int(tactics.EventSelect), int(tactics.EventNo)).Draw(t, fmt.Sprintf("kind%d", i)))
	return tactics.Event{
		Kind:      kind,
		Point:     grid.Point{X: rapid.IntRange(-1, 6).Draw(t, fmt.Sprintf("x%d", i)), Y: rapid.IntRange(-1, 4).Draw(t, fmt.Sprintf("y%d", i))},
		Direction: grid.Direction(rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("dir%d", i))),
	}
}

func TestRunTarget_Property_SnapshotRestoration(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newSession(rt)
		require.True(rt, s.Map.Put(grid.Point{X: 1, Y: 1}, grid.Enemy, 0))
		before := s.Map.Clone()
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		events := make([]tactics.Event, n)
		for i := range events {
			events[i] = drawEvent(rt, i)
		}
		answers := rapid.SliceOfN(rapid.Bool(), 0, 6).Draw(rt, "answers")
		fe, _, _ := frontend(events, answers...)
		_, _ = tactics.RunTarget(context.Background(), s, tactics.ModeCombatant(combat.SideOpponent, false), fe, 1)
		assert.True(rt, s.Map.Equal(before))
	})
}

func TestRunPlacement_Property_SnapshotRestoration(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newSession(rt)
		before := s.Map.Clone()
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		events := make([]tactics.Event, n)
		for i := range events {
			events[i] = drawEvent(rt, i)
		}
		// Every prompt is declined, so the run can only end through input failure.
		fe, _, _ := frontend(events)
		err := tactics.RunPlacement(context.Background(), s, fe, 1)
		require.ErrorIs(rt, err, io.EOF)
		assert.True(rt, s.Map.Equal(before))
	})
}

package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

const bruteYAML = `
domain:
  id: brute
  classes: [goblin]
  tasks:
    - {id: behave}
    - {id: engage}
  methods:
    - {task: behave, id: hurt, precondition: wounded, subtasks: [guard]}
    - {task: behave, id: brawl, subtasks: [engage]}
    - {task: engage, id: melee, subtasks: [hit_nearest, approach]}
  operators:
    - {id: guard, action: defend}
    - {id: hit_nearest, action: fight, target: nearest_enemy}
    - {id: approach, action: move, target: weakest_enemy}
`

// fakeCaller answers hooks from a table and records the arguments.
type fakeCaller struct {
	answers map[string]lua.LValue
	calls   [][]lua.LValue
}

func (f *fakeCaller) CallHook(_, hook string, args ...lua.LValue) (lua.LValue, error) {
	f.calls = append(f.calls, args)
	if v, ok := f.answers[hook]; ok {
		return v, nil
	}
	return lua.LNil, nil
}

func brute(t require.TestingT) *ai.Domain {
	d, err := ai.LoadDomainBytes([]byte(bruteYAML))
	require.NoError(t, err)
	return d
}

// arena puts Alys at (0,0), Bren at (4,0) and the goblin at goblin.
func arena(t require.TestingT, goblin grid.Point) *battle.Session {
	m, err := grid.ParseLayout([]string{".....", "....."}, 1)
	require.NoError(t, err)
	s := &battle.Session{
		Name: "arena",
		Map:  m,
		Party: &battle.Party{Members: combat.Roster{
			{Class: "warrior", Name: "Alys", Health: 10, MaxHealth: 10},
			{Class: "ranger", Name: "Bren", Health: 3, MaxHealth: 10},
		}},
		Opponents: &battle.Opponents{Members: combat.Roster{
			{Class: "goblin", Name: "Goblin", Side: combat.SideOpponent, Health: 4, MaxHealth: 8},
		}},
		Conditions: battle.Conditions{},
		Tracer:     battle.NopTracer(),
	}
	require.True(t, m.Put(grid.Point{X: 0, Y: 0}, grid.Player, 0))
	require.True(t, m.Put(grid.Point{X: 4, Y: 0}, grid.Player, 1))
	require.True(t, m.Put(goblin, grid.Enemy, 0))
	return s
}

func TestDomain_Validate(t *testing.T) {
	minimal := func() *ai.Domain {
		return &ai.Domain{
			ID:        "d",
			Tasks:     []*ai.Task{{ID: ai.RootTask}},
			Methods:   []*ai.Method{{TaskID: ai.RootTask, ID: "m", Subtasks: []string{"op"}}},
			Operators: []*ai.Operator{{ID: "op", Action: "defend"}},
		}
	}
	require.NoError(t, minimal().Validate())

	cases := map[string]func(d *ai.Domain){
		"empty id":        func(d *ai.Domain) { d.ID = "" },
		"no tasks":        func(d *ai.Domain) { d.Tasks = nil },
		"no root":         func(d *ai.Domain) { d.Tasks[0].ID = "other"; d.Methods[0].TaskID = "other" },
		"unknown action":  func(d *ai.Domain) { d.Operators[0].Action = "dance" },
		"duplicate op":    func(d *ai.Domain) { d.Operators = append(d.Operators, &ai.Operator{ID: "op", Action: "move"}) },
		"unknown task":    func(d *ai.Domain) { d.Methods[0].TaskID = "ghost" },
		"unknown subtask": func(d *ai.Domain) { d.Methods[0].Subtasks = []string{"ghost"} },
		"empty subtasks":  func(d *ai.Domain) { d.Methods[0].Subtasks = nil },
		"empty method id": func(d *ai.Domain) { d.Methods[0].ID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := minimal()
			mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestParseAction(t *testing.T) {
	for a := combat.ActionMove; a <= combat.ActionBack; a++ {
		got, ok := ai.ParseAction(a.String())
		require.True(t, ok, a.String())
		assert.Equal(t, a, got)
	}
	_, ok := ai.ParseAction("pass")
	assert.False(t, ok)
}

func TestLoadDomainBytes_RejectsUnknownFields(t *testing.T) {
	_, err := ai.LoadDomainBytes([]byte("domain:\n  id: x\n  mood: grumpy\n"))
	assert.Error(t, err)
	_, err = ai.LoadDomainBytes([]byte("other: {}\n"))
	assert.Error(t, err)
}

func TestLoadDomains(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brute.yaml"), []byte(bruteYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	domains, err := ai.LoadDomains(dir)
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, []string{"goblin"}, domains[0].Classes)

	_, err = ai.LoadDomains(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPlanner_FightsAdjacentEnemy(t *testing.T) {
	s := arena(t, grid.Point{X: 1, Y: 0})
	caller := &fakeCaller{}
	p := ai.NewPlanner(brute(t), caller, "arena")

	in, ok := p.Decide(ai.BuildWorldState(s, combat.SideOpponent, 0))
	require.True(t, ok)
	assert.Equal(t, combat.ActionFight, in.Action)
	require.NotNil(t, in.Target)
	assert.Equal(t, "Alys", in.Target.Name)

	require.Len(t, caller.calls, 1, "only the wounded precondition runs")
	assert.Equal(t, []lua.LValue{lua.LString("goblin"), lua.LNumber(4), lua.LNumber(8), lua.LNumber(1)}, caller.calls[0])
}

func TestPlanner_DropsIneligibleOperators(t *testing.T) {
	s := arena(t, grid.Point{X: 2, Y: 1})
	p := ai.NewPlanner(brute(t), &fakeCaller{}, "arena")

	plan, err := p.Plan(ai.BuildWorldState(s, combat.SideOpponent, 0))
	require.NoError(t, err)
	require.Len(t, plan, 1, "fight needs an adjacent enemy")
	assert.Equal(t, combat.ActionMove, plan[0].Action)
	assert.Equal(t, "Bren", plan[0].Target.Name, "move heads for the weakest enemy")
}

func TestPlanner_PreconditionSelectsMethod(t *testing.T) {
	s := arena(t, grid.Point{X: 1, Y: 0})
	p := ai.NewPlanner(brute(t), &fakeCaller{answers: map[string]lua.LValue{"wounded": lua.LTrue}}, "arena")

	in, ok := p.Decide(ai.BuildWorldState(s, combat.SideOpponent, 0))
	require.True(t, ok)
	assert.Equal(t, combat.ActionDefend, in.Action)
	assert.Nil(t, in.Target)
}

func TestPlanner_NoApplicableMethod(t *testing.T) {
	d := &ai.Domain{
		ID:        "picky",
		Tasks:     []*ai.Task{{ID: ai.RootTask}},
		Methods:   []*ai.Method{{TaskID: ai.RootTask, ID: "m", Precondition: "never", Subtasks: []string{"op"}}},
		Operators: []*ai.Operator{{ID: "op", Action: "defend"}},
	}
	s := arena(t, grid.Point{X: 1, Y: 0})
	plan, err := ai.NewPlanner(d, &fakeCaller{}, "arena").Plan(ai.BuildWorldState(s, combat.SideOpponent, 0))
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)

	_, err = ai.NewPlanner(d, &fakeCaller{}, "arena").Plan(&ai.WorldState{})
	assert.Error(t, err)
}

func TestPlanner_RecursiveDomainTerminates(t *testing.T) {
	d := &ai.Domain{
		ID:      "loop",
		Tasks:   []*ai.Task{{ID: ai.RootTask}},
		Methods: []*ai.Method{{TaskID: ai.RootTask, ID: "again", Subtasks: []string{ai.RootTask, ai.RootTask}}},
	}
	require.NoError(t, d.Validate())
	s := arena(t, grid.Point{X: 1, Y: 0})
	plan, err := ai.NewPlanner(d, &fakeCaller{}, "arena").Plan(ai.BuildWorldState(s, combat.SideOpponent, 0))
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestWorldState_SkipsAbsentCombatants(t *testing.T) {
	s := arena(t, grid.Point{X: 1, Y: 0})
	s.Party.Members[0].Status.Apply(status.Away, 2)
	s.Party.Members[1].Health = 0

	ws := ai.BuildWorldState(s, combat.SideOpponent, 0)
	assert.Empty(t, ws.Enemies())
	assert.Nil(t, ws.NearestEnemy())
	assert.Nil(t, ws.WeakestEnemy())
	assert.Equal(t, "Goblin", ws.ResolveTarget(ai.TargetSelf).Name)
}

func TestWorldState_ResolveTargetByClassOrName(t *testing.T) {
	ws := ai.BuildWorldState(arena(t, grid.Point{X: 1, Y: 0}), combat.SideOpponent, 0)
	assert.Equal(t, "Bren", ws.ResolveTarget("ranger").Name)
	assert.Equal(t, "Alys", ws.ResolveTarget("Alys").Name)
	assert.Nil(t, ws.ResolveTarget("goblin"), "allies are never targets")
	assert.Empty(t, ws.Allies())
}

func TestRegistry(t *testing.T) {
	reg := ai.NewRegistry()
	caller := &fakeCaller{}
	require.NoError(t, reg.Register(brute(t), caller, "arena"))
	assert.Error(t, reg.Register(brute(t), caller, "arena"), "duplicate domain")

	poacher := brute(t)
	poacher.ID = "poacher"
	assert.Error(t, reg.Register(poacher, caller, "arena"), "goblin is already claimed")
	_, ok := reg.PlannerFor("poacher")
	assert.False(t, ok)

	p, ok := reg.ForClass("goblin")
	require.True(t, ok)
	assert.Equal(t, "brute", p.Domain().ID)
	_, ok = reg.ForClass("rat")
	assert.False(t, ok)

	fallback := brute(t)
	fallback.ID = ai.DefaultDomain
	fallback.Classes = nil
	require.NoError(t, reg.Register(fallback, caller, "arena"))
	p, ok = reg.ForClass("rat")
	require.True(t, ok)
	assert.Equal(t, ai.DefaultDomain, p.Domain().ID)
}

func TestProperty_PlannedActionsAreEligible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		at := grid.Point{X: rapid.IntRange(1, 3).Draw(rt, "x"), Y: rapid.IntRange(0, 1).Draw(rt, "y")}
		wounded := lua.LValue(lua.LFalse)
		if rapid.Bool().Draw(rt, "wounded") {
			wounded = lua.LTrue
		}
		s := arena(rt, at)
		p := ai.NewPlanner(brute(rt), &fakeCaller{answers: map[string]lua.LValue{"wounded": wounded}}, "arena")
		ws := ai.BuildWorldState(s, combat.SideOpponent, 0)

		plan, err := p.Plan(ws)
		if err != nil {
			rt.Fatalf("Plan: %v", err)
		}
		for _, in := range plan {
			if !ws.Allows(in.Action) {
				rt.Fatalf("planned %s outside %v", in.Action, ws.Eligible)
			}
		}
	})
}

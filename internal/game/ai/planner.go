package ai

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// maxSteps bounds decomposition so a recursive domain cannot loop forever.
const maxSteps = 32

// ScriptCaller evaluates Lua preconditions. *scripting.Manager satisfies it.
type ScriptCaller interface {
	// CallHook calls the named Lua function in scope. It returns LNil when
	// the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Intent is one planned step.
type Intent struct {
	Action combat.ActionType
	// Target is nil for actions without a target.
	Target *CombatantState
}

// Planner evaluates one domain.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	scope  string
}

// NewPlanner creates a Planner whose preconditions run in scope.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scope: scope}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan decomposes RootTask against state. Operators whose action is not
// eligible, or whose named target does not resolve, are dropped.
//
// Precondition: state and state.Self must not be nil.
// Postcondition: returns a non-nil slice; Lua failures count as a false precondition.
func (p *Planner) Plan(state *WorldState) ([]Intent, error) {
	if state == nil || state.Self == nil {
		return nil, errors.New("ai.Planner.Plan: state and state.Self must not be nil")
	}

	queue := []string{RootTask}
	result := []Intent{}
	for steps := 0; len(queue) > 0 && steps < maxSteps; steps++ {
		current := queue[0]
		queue = queue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			if in, ok := p.resolve(op, state); ok {
				result = append(result, in)
			}
			continue
		}
		m := p.applicable(current, state)
		if m == nil {
			continue
		}
		queue = append(append([]string(nil), m.Subtasks...), queue...)
	}
	return result, nil
}

// Decide returns the first step of the plan.
func (p *Planner) Decide(state *WorldState) (Intent, bool) {
	plan, err := p.Plan(state)
	if err != nil || len(plan) == 0 {
		return Intent{}, false
	}
	return plan[0], true
}

func (p *Planner) resolve(op *Operator, state *WorldState) (Intent, bool) {
	action, _ := ParseAction(op.Action)
	if !state.Allows(action) {
		return Intent{}, false
	}
	in := Intent{Action: action}
	if op.Target != "" {
		if in.Target = state.ResolveTarget(op.Target); in.Target == nil {
			return Intent{}, false
		}
	}
	return in, true
}

// applicable returns the first method of taskID whose precondition passes.
// Preconditions receive (class, health, max_health, nearest_enemy_distance),
// the distance being -1 when no enemy is present.
func (p *Planner) applicable(taskID string, state *WorldState) *Method {
	self := state.Self
	distance := -1
	if e := state.NearestEnemy(); e != nil {
		distance = self.At.Distance(e.At)
	}
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		val, err := p.caller.CallHook(p.scope, m.Precondition,
			lua.LString(self.Class),
			lua.LNumber(self.Health),
			lua.LNumber(self.MaxHealth),
			lua.LNumber(distance),
		)
		if err == nil && lua.LVAsBool(val) {
			return m
		}
	}
	return nil
}

package battle

import (
	"fmt"
	"sort"
)

// Condition is a named battle rule.
type Condition string

const (
	// NoCombat forbids melee for everyone.
	NoCombat Condition = "no_combat"
	// CannotFlee removes the flee action.
	CannotFlee Condition = "cannot_flee"
	// LastBattle carries survivors over from the party's previous battle.
	LastBattle Condition = "last_battle"
	// HealSurvivors restores carried-over survivors to full health.
	HealSurvivors Condition = "heal_survivors"
	// Tactics runs manual player placement before setup.
	Tactics Condition = "tactics"
)

var knownConditions = map[Condition]bool{
	NoCombat:      true,
	CannotFlee:    true,
	LastBattle:    true,
	HealSurvivors: true,
	Tactics:       true,
}

// Conditions is the set of conditions active for a battle.
type Conditions map[Condition]bool

// ParseConditions builds a set from names, rejecting unknown ones.
func ParseConditions(names []string) (Conditions, error) {
	out := make(Conditions, len(names))
	for _, n := range names {
		c := Condition(n)
		if !knownConditions[c] {
			return nil, fmt.Errorf("unknown battle condition %q", n)
		}
		out[c] = true
	}
	return out, nil
}

// Has reports whether c is active. A nil set has no conditions.
func (cs Conditions) Has(c Condition) bool { return cs[c] }

// List returns the active conditions sorted by name.
func (cs Conditions) List() []Condition {
	out := make([]Condition, 0, len(cs))
	for c, on := range cs {
		if on {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package dungeon

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// TriggerKind says what condition arms a trigger.
type TriggerKind string

const (
	// TriggerCharacter fires when a living member of class Params[0] is in the party.
	TriggerCharacter TriggerKind = "character"
	// TriggerItem fires when a member carries Params[0].
	TriggerItem TriggerKind = "item"
	// TriggerAnyItem fires when a member carries any of Params.
	TriggerAnyItem TriggerKind = "any_item"
	// TriggerAllItems fires when the party together carries every item in Params.
	TriggerAllItems TriggerKind = "all_items"
	// TriggerVictory always fires.
	TriggerVictory TriggerKind = "victory"
)

// Valid reports whether k is a known kind.
func (k TriggerKind) Valid() bool {
	switch k {
	case TriggerCharacter, TriggerItem, TriggerAnyItem, TriggerAllItems, TriggerVictory:
		return true
	}
	return false
}

// Trigger is a one-shot event bound to a cell.
type Trigger struct {
	Kind    TriggerKind
	At      grid.Point
	Message string
	Params  []string
}

// Validate checks the parameter count for the kind.
func (t Trigger) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unknown trigger kind %q", t.Kind)
	}
	switch t.Kind {
	case TriggerCharacter, TriggerItem:
		if len(t.Params) != 1 {
			return fmt.Errorf("%s trigger at %s needs exactly one parameter", t.Kind, t.At)
		}
	case TriggerAnyItem, TriggerAllItems:
		if len(t.Params) == 0 {
			return fmt.Errorf("%s trigger at %s needs at least one parameter", t.Kind, t.At)
		}
	}
	return nil
}

// Hook may veto a trigger that is about to fire. Returning false keeps the
// trigger armed. Hooks run with the level locked and must not call back into it.
type Hook func(t Trigger) bool

// Fired is a trigger that fired during Evaluate.
type Fired struct {
	Trigger Trigger
}

// SetHook installs h; nil removes the hook.
func (l *Level) SetHook(h Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hook = h
}

// Arm adds t to its cell.
//
// Postcondition: returns the validation error and leaves the level unchanged on failure.
func (l *Level) Arm(t Trigger) error {
	if err := t.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t.Params = append([]string(nil), t.Params...)
	l.triggers[t.At] = append(l.triggers[t.At], t)
	return nil
}

// Armed returns every armed trigger in row-major cell order.
func (l *Level) Armed() []Trigger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Trigger
	for _, ts := range l.triggers {
		out = append(out, ts...)
	}
	sortEntries(out, func(i int) grid.Point { return out[i].At })
	return out
}

// Evaluate fires the triggers on at whose condition party satisfies and that
// the hook, if any, allows. Fired triggers are disarmed.
//
// Postcondition: triggers that did not fire stay armed in their original order.
func (l *Level) Evaluate(at grid.Point, party combat.Roster) []Fired {
	l.mu.Lock()
	defer l.mu.Unlock()
	var fired []Fired
	var kept []Trigger
	for _, t := range l.triggers[at] {
		if satisfied(t, party) && (l.hook == nil || l.hook(t)) {
			fired = append(fired, Fired{Trigger: t})
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		delete(l.triggers, at)
	} else {
		l.triggers[at] = kept
	}
	return fired
}

func satisfied(t Trigger, party combat.Roster) bool {
	switch t.Kind {
	case TriggerVictory:
		return true
	case TriggerCharacter:
		_, ok := party.FindClass(t.Params[0])
		return ok
	case TriggerItem:
		return carried(party)[t.Params[0]]
	case TriggerAnyItem:
		held := carried(party)
		for _, p := range t.Params {
			if held[p] {
				return true
			}
		}
		return false
	case TriggerAllItems:
		held := carried(party)
		for _, p := range t.Params {
			if !held[p] {
				return false
			}
		}
		return true
	}
	return false
}

// carried returns the set of item names held by living members.
func carried(party combat.Roster) map[string]bool {
	held := make(map[string]bool)
	for i := range party {
		if !party[i].IsAlive() {
			continue
		}
		for _, it := range party[i].Items {
			held[it] = true
		}
	}
	return held
}

func sortEntries(n interface{}, at func(i int) grid.Point) {
	sort.SliceStable(n, func(i, j int) bool {
		a, b := at(i), at(j)
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

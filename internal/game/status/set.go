// Package status tracks combatant status flags and their round countdowns.
package status

import "sort"

// Flag names a combatant status.
type Flag string

const (
	// Away delays placement until a later round.
	Away Flag = "away"
	// Excluded keeps a party member off the main field; placed on an away cell.
	Excluded Flag = "excluded"
	// Entangled prevents movement.
	Entangled Flag = "entangled"
	// Invisible allows fleeing while engaged.
	Invisible Flag = "invisible"
	// Enthralled alters a non-player's shooting rule.
	Enthralled Flag = "enthralled"
	// InCombat marks a combatant that has joined the current fight.
	InCombat Flag = "in_combat"
)

// Known lists every recognised flag.
var Known = []Flag{Away, Excluded, Entangled, Invisible, Enthralled, InCombat}

// IsKnown reports whether f is one of Known.
func (f Flag) IsKnown() bool {
	for _, k := range Known {
		if f == k {
			return true
		}
	}
	return false
}

// Set maps each active flag to its remaining rounds; 0 means no countdown.
// The zero value is an empty set. Set is a reference type: use Clone before
// storing a copy.
type Set map[Flag]int

// Apply activates f for rounds rounds (0 = until removed).
// Re-applying keeps the longer countdown, and a permanent flag stays permanent.
//
// Postcondition: Has(f) is true.
func (s *Set) Apply(f Flag, rounds int) {
	if *s == nil {
		*s = make(Set)
	}
	if rounds < 0 {
		rounds = 0
	}
	if existing, ok := (*s)[f]; ok {
		if existing == 0 || rounds == 0 {
			(*s)[f] = 0
			return
		}
		if rounds > existing {
			(*s)[f] = rounds
		}
		return
	}
	(*s)[f] = rounds
}

// Remove clears f. Removing an inactive flag is a no-op.
func (s Set) Remove(f Flag) {
	delete(s, f)
}

// Has reports whether f is active.
func (s Set) Has(f Flag) bool {
	_, ok := s[f]
	return ok
}

// Remaining returns the countdown of f, 0 if permanent or inactive.
func (s Set) Remaining(f Flag) int {
	return s[f]
}

// Tick decrements every countdown by one round.
//
// Postcondition: Returns the flags that expired, sorted; none of them is active.
// Flags without a countdown are not affected.
func (s Set) Tick() []Flag {
	var expired []Flag
	for f, n := range s {
		if n <= 0 {
			continue
		}
		n--
		if n == 0 {
			expired = append(expired, f)
			delete(s, f)
			continue
		}
		s[f] = n
	}
	sortFlags(expired)
	return expired
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for f, n := range s {
		out[f] = n
	}
	return out
}

// Flags returns the active flags sorted by name.
func (s Set) Flags() []Flag {
	out := make([]Flag, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sortFlags(out)
	return out
}

func sortFlags(fs []Flag) {
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
}

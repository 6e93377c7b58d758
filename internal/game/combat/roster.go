package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/book"
)

// Roster is an ordered collection of combatants owned by value.
// Map cells refer to members by index.
type Roster []Combatant

// Valid reports whether id indexes a member.
func (r Roster) Valid(id int) bool { return id >= 0 && id < len(r) }

// Get returns a pointer to member id for in-place updates.
//
// Postcondition: Returns (member, true) for valid ids, (nil, false) otherwise.
func (r Roster) Get(id int) (*Combatant, bool) {
	if !r.Valid(id) {
		return nil, false
	}
	return &r[id], true
}

// Count returns the number of living members.
func (r Roster) Count() int {
	n := 0
	for i := range r {
		if r[i].IsAlive() {
			n++
		}
	}
	return n
}

// Living returns the indices of living members in roster order.
func (r Roster) Living() []int {
	var out []int
	for i := range r {
		if r[i].IsAlive() {
			out = append(out, i)
		}
	}
	return out
}

// FindClass returns the index of the first living member of class.
func (r Roster) FindClass(class string) (int, bool) {
	for i := range r {
		if r[i].Class == class && r[i].IsAlive() {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy of r.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	for i := range r {
		out[i] = r[i].Clone()
	}
	return out
}

// Survivor is a persisted combatant snapshot tagged with the battle location
// it survived.
type Survivor struct {
	Combatant Combatant     `json:"combatant"`
	Location  book.Location `json:"location"`
}

// CloneSurvivors deep-copies a survivor list.
func CloneSurvivors(in []Survivor) []Survivor {
	if in == nil {
		return nil
	}
	out := make([]Survivor, len(in))
	for i, s := range in {
		out[i] = Survivor{Combatant: s.Combatant.Clone(), Location: s.Location}
	}
	return out
}

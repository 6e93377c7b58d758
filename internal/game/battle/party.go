package battle

import (
	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Party is the player roster plus its persisted cross-battle state.
type Party struct {
	Members combat.Roster
	// Location is the party's current narrative position.
	Location book.Location
	// LastBattle is where the party last fought, None if never.
	LastBattle book.Location
	// Survivors are opponents left standing in earlier battles.
	Survivors []combat.Survivor
}

// Clone returns a deep copy of p.
func (p *Party) Clone() *Party {
	return &Party{
		Members:    p.Members.Clone(),
		Location:   p.Location,
		LastBattle: p.LastBattle,
		Survivors:  combat.CloneSurvivors(p.Survivors),
	}
}

// Opponents is the enemy roster of one battle.
type Opponents struct {
	Members combat.Roster
	// Location is the battle's explicit location, None to use the party's.
	Location book.Location
}

// Clone returns a deep copy of o.
func (o *Opponents) Clone() *Opponents {
	return &Opponents{Members: o.Members.Clone(), Location: o.Location}
}

// Package combat models battle participants and decides which actions each of
// them may legally take.
package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Side distinguishes the player party from an opponent group.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// Kind returns the map occupant kind used for this side.
func (s Side) Kind() grid.Kind {
	if s == SidePlayer {
		return grid.Player
	}
	return grid.Enemy
}

// Hostile returns the opposing side.
func (s Side) Hostile() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// String returns "player" or "opponent".
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// TargetClass restricts how a combatant may be targeted.
type TargetClass int

const (
	TargetAny TargetClass = iota
	TargetMeleeOnly
	TargetRangedOnly
	TargetUntargetable
)

// AllowsMelee reports whether melee actions may target this class.
func (t TargetClass) AllowsMelee() bool { return t == TargetAny || t == TargetMeleeOnly }

// AllowsRanged reports whether ranged actions and spells may target this class.
func (t TargetClass) AllowsRanged() bool { return t == TargetAny || t == TargetRangedOnly }

// String returns the YAML spelling of t.
func (t TargetClass) String() string {
	switch t {
	case TargetAny:
		return "any"
	case TargetMeleeOnly:
		return "melee_only"
	case TargetRangedOnly:
		return "ranged_only"
	case TargetUntargetable:
		return "untargetable"
	default:
		return "unknown"
	}
}

// ParseTargetClass maps the YAML spelling to a TargetClass; "" is TargetAny.
func ParseTargetClass(s string) (TargetClass, bool) {
	switch s {
	case "", "any":
		return TargetAny, true
	case "melee_only":
		return TargetMeleeOnly, true
	case "ranged_only":
		return TargetRangedOnly, true
	case "untargetable":
		return TargetUntargetable, true
	default:
		return TargetAny, false
	}
}

// Skill is a trained capability.
type Skill string

// Weapon is an equipped weapon type.
type Weapon string

const (
	SkillArchery      Skill = "archery"
	SkillQuarterstaff Skill = "quarterstaff"

	WeaponBow          Weapon = "bow"
	WeaponQuarterstaff Weapon = "quarterstaff"
)

// SignatureMoves pairs each signature skill with the weapon it requires.
var SignatureMoves = map[Skill]Weapon{
	SkillQuarterstaff: WeaponQuarterstaff,
}

// Combatant is one battle participant, owned by value by its Roster.
type Combatant struct {
	// Class is the identity tag, unique within a party.
	Class     string     `json:"class"`
	Name      string     `json:"name"`
	Side      Side       `json:"side"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"max_health"`
	Status    status.Set `json:"status,omitempty"`
	Skills    []Skill    `json:"skills,omitempty"`
	Weapons   []Weapon   `json:"weapons,omitempty"`
	Ranged    bool       `json:"ranged,omitempty"`
	// Spellcaster marks a combatant with access to the spell menu.
	Spellcaster bool        `json:"spellcaster,omitempty"`
	Items       []string    `json:"items,omitempty"`
	Target      TargetClass `json:"target"`
}

// IsAlive reports whether Health > 0.
func (c *Combatant) IsAlive() bool { return c.Health > 0 }

// IsPlayer reports whether c belongs to the player party.
func (c *Combatant) IsPlayer() bool { return c.Side == SidePlayer }

// Has reports whether status flag f is active.
func (c *Combatant) Has(f status.Flag) bool { return c.Status.Has(f) }

// IsAway reports whether c has an AWAY countdown still running.
func (c *Combatant) IsAway() bool { return c.Status.Remaining(status.Away) > 0 }

// HasSkill reports whether c is trained in s.
func (c *Combatant) HasSkill(s Skill) bool {
	for _, k := range c.Skills {
		if k == s {
			return true
		}
	}
	return false
}

// HasWeapon reports whether c has w equipped.
func (c *Combatant) HasWeapon(w Weapon) bool {
	for _, k := range c.Weapons {
		if k == w {
			return true
		}
	}
	return false
}

// CanShoot reports whether c can make a ranged attack.
func (c *Combatant) CanShoot() bool {
	return c.Ranged || (c.HasSkill(SkillArchery) && c.HasWeapon(WeaponBow))
}

// HasSignatureSkill reports whether c holds a signature skill together with
// the weapon it requires.
func (c *Combatant) HasSignatureSkill() bool {
	for s, w := range SignatureMoves {
		if c.HasSkill(s) && c.HasWeapon(w) {
			return true
		}
	}
	return false
}

// HasItems reports whether c carries at least one item.
func (c *Combatant) HasItems() bool { return len(c.Items) > 0 }

// Heal restores c to full health.
//
// Postcondition: Health == MaxHealth.
func (c *Combatant) Heal() { c.Health = c.MaxHealth }

// Clone returns a deep copy of c.
func (c Combatant) Clone() Combatant {
	c.Status = c.Status.Clone()
	c.Skills = append([]Skill(nil), c.Skills...)
	c.Weapons = append([]Weapon(nil), c.Weapons...)
	c.Items = append([]string(nil), c.Items...)
	return c
}

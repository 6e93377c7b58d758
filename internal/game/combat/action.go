package combat

// ActionType identifies one entry of a combatant's action menu.
// Constants are declared in menu order.
type ActionType int

const (
	ActionMove ActionType = iota
	ActionDefend
	ActionFight
	ActionSignature
	ActionShoot
	ActionSpells
	ActionFlee
	ActionItems
	ActionBack
)

// String returns the menu label of the ActionType.
// Postcondition: returns "unknown" for values outside the declared set.
func (a ActionType) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionDefend:
		return "defend"
	case ActionFight:
		return "fight"
	case ActionSignature:
		return "signature"
	case ActionShoot:
		return "shoot"
	case ActionSpells:
		return "spells"
	case ActionFlee:
		return "flee"
	case ActionItems:
		return "items"
	case ActionBack:
		return "back"
	default:
		return "unknown"
	}
}

// ActionNames renders a list of actions as their menu labels.
func ActionNames(actions []ActionType) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}

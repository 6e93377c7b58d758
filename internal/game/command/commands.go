// Package command defines the text commands a player types during a battle
// and the registry that resolves them.
package command

import "github.com/cory-johannsen/skirmish/internal/game/combat"

// Categories for organizing commands in help output.
const (
	CategoryCursor = "cursor"
	CategoryView   = "view"
	CategoryDialog = "dialog"
	CategoryAction = "action"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to input events.
const (
	HandlerSelect  = "select"
	HandlerHover   = "hover"
	HandlerScroll  = "scroll"
	HandlerHold    = "hold"
	HandlerConfirm = "confirm"
	HandlerBack    = "back"
	HandlerYes     = "yes"
	HandlerNo      = "no"
	HandlerAction  = "action"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "select <x> <y>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler selects the event the command produces.
	Handler string
	// Action is the menu entry picked by HandlerAction commands.
	Action combat.ActionType
}

// BattleCommands returns every command understood during a battle.
//
// The bare alias "s" belongs to select; with no coordinates the terminal
// treats it as a scroll south.
func BattleCommands() []Command {
	cmds := []Command{
		{Name: "select", Aliases: []string{"s", "sel"}, Usage: "select <x> <y>", Help: "Choose the cell at x,y", Category: CategoryCursor, Handler: HandlerSelect},
		{Name: "hover", Aliases: []string{"h", "look"}, Usage: "hover <x> <y>", Help: "Describe the cell at x,y", Category: CategoryCursor, Handler: HandlerHover},

		{Name: "north", Aliases: []string{"n", "up", "u"}, Help: "Scroll the view north", Category: CategoryView, Handler: HandlerScroll},
		{Name: "east", Aliases: []string{"e", "right", "r"}, Help: "Scroll the view east", Category: CategoryView, Handler: HandlerScroll},
		{Name: "south", Aliases: []string{"down", "d"}, Help: "Scroll the view south", Category: CategoryView, Handler: HandlerScroll},
		{Name: "west", Aliases: []string{"w", "left", "l"}, Help: "Scroll the view west", Category: CategoryView, Handler: HandlerScroll},
		{Name: "hold", Usage: "hold <direction>", Help: "Scroll several steps at once", Category: CategoryView, Handler: HandlerHold},

		{Name: "confirm", Aliases: []string{"c", "done"}, Help: "Finish the current selection", Category: CategoryDialog, Handler: HandlerConfirm},
		{Name: "back", Aliases: []string{"b", "cancel"}, Help: "Undo or leave the current screen", Category: CategoryDialog, Handler: HandlerBack},
		{Name: "yes", Aliases: []string{"y"}, Help: "Answer yes", Category: CategoryDialog, Handler: HandlerYes},
		{Name: "no", Help: "Answer no", Category: CategoryDialog, Handler: HandlerNo},

		{Name: "help", Aliases: []string{"?"}, Help: "Show this help", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the battle", Category: CategorySystem, Handler: HandlerQuit},
	}
	for a := combat.ActionMove; a < combat.ActionBack; a++ {
		cmds = append(cmds, Command{
			Name:     a.String(),
			Help:     "Choose " + a.String() + " from the action menu",
			Category: CategoryAction,
			Handler:  HandlerAction,
			Action:   a,
		})
	}
	return cmds
}

// Package command provides the command registry, parser and interpreter that
// turn a line of player input into a game transition.
package command

// Categories for organizing commands.
const (
	CategoryMeta = "meta"
	CategoryItem = "item"
)

// Handler identifiers mapping commands to game operations.
const (
	HandlerLook      = "look"
	HandlerInventory = "inventory"
	HandlerScore     = "score"
	HandlerUndo      = "undo"
	HandlerLog       = "log"
	HandlerQuit      = "quit"
	HandlerTake      = "take"
	HandlerUse       = "use"
)

// Command defines a player-invocable command that is legal everywhere.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (meta or item).
	Category string
	// Handler names the game operation the command maps to.
	Handler string
}

// BuiltinCommands returns the global commands in menu order.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "look", Aliases: []string{"l"}, Help: "Describe the current location in full", Category: CategoryMeta, Handler: HandlerLook},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Help: "List the items you carry", Category: CategoryMeta, Handler: HandlerInventory},
		{Name: "score", Help: "Show your score and moves", Category: CategoryMeta, Handler: HandlerScore},
		{Name: "undo", Help: "Return to your previous location", Category: CategoryMeta, Handler: HandlerUndo},
		{Name: "log", Aliases: []string{"history"}, Help: "Show where you have been", Category: CategoryMeta, Handler: HandlerLog},
		{Name: "quit", Aliases: []string{"q", "exit"}, Help: "End the game", Category: CategoryMeta, Handler: HandlerQuit},
		{Name: "take", Aliases: []string{"get"}, Help: "Pick up an item here", Category: CategoryItem, Handler: HandlerTake},
		{Name: "use", Aliases: []string{"apply"}, Help: "Use an item you carry", Category: CategoryItem, Handler: HandlerUse},
	}
}

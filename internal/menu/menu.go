package menu

import (
	"errors"
)

var (
	// ErrBack is returned when the user leaves a menu with esc or q.
	ErrBack = errors.New("back")

	// ErrInterrupted is returned when the user presses ctrl+c.
	ErrInterrupted = errors.New("interrupted")

	// ErrNoItems is returned when Select is called with nothing to choose from.
	ErrNoItems = errors.New("nothing to select")
)

// Item is one selectable entry.
type Item struct {
	Detail string // optional second line
	Label  string
	Value  string
}

// Selector presents menus and prompts and blocks until the user answers.
type Selector interface {
	Select(title string, items []Item) (Item, error)
	Prompt(title, initial string) (string, error)
}

package placement

import (
	"errors"
	"fmt"
)

// Category classifies a setup failure.
type Category string

const (
	CategoryOrigins         Category = "origins"
	CategoryAwayPlayers     Category = "away_players"
	CategorySpawns          Category = "spawns"
	CategoryAwayOpponents   Category = "away_opponents"
	CategorySurvivors       Category = "survivors"
	CategoryNoSurvivorCells Category = "no_survivor_cells"
	CategoryNoPlayers       Category = "no_players"
	CategoryNoOpponents     Category = "no_opponents"
)

var categoryText = map[Category]string{
	CategoryOrigins:         "insufficient origin cells",
	CategoryAwayPlayers:     "insufficient away-player cells",
	CategorySpawns:          "insufficient spawn cells",
	CategoryAwayOpponents:   "insufficient away-opponent cells",
	CategorySurvivors:       "insufficient survivor cells",
	CategoryNoSurvivorCells: "survivors pending but the map declares no survivor cells",
	CategoryNoPlayers:       "no living players on the map",
	CategoryNoOpponents:     "no living opponents on the map",
}

// SetupError is an unrecoverable battle setup failure. It signals a content
// authoring defect, never a player mistake.
type SetupError struct {
	Category Category
	Detail   string
}

// Error implements error.
func (e *SetupError) Error() string {
	msg := "battle setup: " + categoryText[e.Category]
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any SetupError of the same category, so the sentinels below
// work with errors.Is regardless of Detail.
func (e *SetupError) Is(target error) bool {
	t, ok := target.(*SetupError)
	return ok && t.Category == e.Category
}

var (
	ErrInsufficientOrigins       = &SetupError{Category: CategoryOrigins}
	ErrInsufficientAwayPlayers   = &SetupError{Category: CategoryAwayPlayers}
	ErrInsufficientSpawns        = &SetupError{Category: CategorySpawns}
	ErrInsufficientAwayOpponents = &SetupError{Category: CategoryAwayOpponents}
	ErrInsufficientSurvivorCells = &SetupError{Category: CategorySurvivors}
	ErrNoSurvivorCells           = &SetupError{Category: CategoryNoSurvivorCells}
	ErrNoPlayers                 = &SetupError{Category: CategoryNoPlayers}
	ErrNoOpponents               = &SetupError{Category: CategoryNoOpponents}
)

// IsFatal reports whether err is (or wraps) a setup failure.
func IsFatal(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

func fail(c Category, format string, args ...interface{}) error {
	return &SetupError{Category: c, Detail: fmt.Sprintf(format, args...)}
}

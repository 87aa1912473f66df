package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("not allowed")
	// ErrAlreadyFinal is returned when a response sits in a terminal
	// confirmation state and no further transition is accepted.
	ErrAlreadyFinal = errors.New("response already finalized")
)

// ValidationError rejects an action outside the enumerated set and tells the
// caller which actions would have been accepted.
type ValidationError struct {
	Action string
	Valid  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action %q, valid actions: %s", e.Action, strings.Join(e.Valid, ", "))
}

package tracker

import (
	"errors"
	"fmt"
)

var (
	ErrNoCountries      = errors.New("no countries selected")
	ErrTooManyCountries = errors.New("too many countries selected")
	ErrInvalidDays      = errors.New("forecast days out of range")
)

// DuplicateSelectionError is returned when two selections name the same
// entity, e.g. "United States" and "united  states".
type DuplicateSelectionError struct {
	First  string
	Second string
	Key    string
}

func (e *DuplicateSelectionError) Error() string {
	return fmt.Sprintf("%q and %q select the same country (%s)", e.First, e.Second, e.Key)
}

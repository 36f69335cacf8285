package sparql

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBinding is returned when a term placeholder has no value.
	ErrMissingBinding = errors.New("missing placeholder binding")

	// ErrUnknownPlaceholder is returned for placeholder names outside the contract.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrDuplicatePlaceholder is returned when a single-occurrence placeholder repeats.
	ErrDuplicatePlaceholder = errors.New("placeholder occurs more than once")

	// ErrInvalidIRI is returned by IRI for values that cannot appear in an IRIREF.
	ErrInvalidIRI = errors.New("invalid IRI")
)

// SyntaxError reports a lexing or parsing failure at a source position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

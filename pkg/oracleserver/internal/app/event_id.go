package app

import (
	"fmt"
	"strings"
)

// maxEventIDLength bounds the identifiers accepted from requesters.
const maxEventIDLength = 256

// EventID identifies an oracle event.
type EventID string

// Verify ensures the event identifier is non-blank and reasonably short.
func (id EventID) Verify() error {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return NewEmptyEventIDError()
	}
	if len(s) > maxEventIDLength {
		return NewEventIDTooLongError(len(s))
	}
	return nil
}

// NewEmptyEventIDError returns an Error indicating that a blank event identifier was submitted.
func NewEmptyEventIDError() Error {
	const msg = "The event identifier cannot be empty."
	return NewIncorrectInputError(msg, msg)
}

// NewEventIDTooLongError returns an Error indicating that the event identifier exceeds the allowed length.
func NewEventIDTooLongError(length int) Error {
	msg := fmt.Sprintf("The event identifier has %d characters and exceeds the maximum of %d.", length, maxEventIDLength)
	return NewIncorrectInputError(msg, msg)
}

// NewUnknownEventError returns an Error indicating that the oracle does not know the requested event.
func NewUnknownEventError(err error) Error {
	return NewNotFoundError(err.Error(), "The requested event is unknown to the oracle.")
}

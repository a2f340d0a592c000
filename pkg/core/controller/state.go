package controller

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the side of the contract a controller plays.
type Role int

const (
	Offerer Role = iota
	Accepter
)

func (r Role) String() string {
	switch r {
	case Offerer:
		return "offerer"
	case Accepter:
		return "accepter"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// State is a step of the settlement handshake.
type State int

const (
	Created State = iota
	ContractLoaded
	StorageInitialized
	KeysExchanged
	Attested
	Finalized
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case ContractLoaded:
		return "contract-loaded"
	case StorageInitialized:
		return "storage-initialized"
	case KeysExchanged:
		return "keys-exchanged"
	case Attested:
		return "attested"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidState = errors.New("operation not allowed in current state")

// StateError is returned when an operation is called out of order.
type StateError struct {
	Op      string
	Allowed []State
	Actual  State
}

func (e *StateError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, s.String())
	}
	return fmt.Sprintf("%s: %v: in %s, allowed in %s", e.Op, ErrInvalidState, e.Actual, strings.Join(allowed, "|"))
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

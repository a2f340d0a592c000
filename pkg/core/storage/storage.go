// Package storage keeps the per-outcome settlement material of one party.
package storage

import (
	"errors"
	"fmt"
	"slices"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrOutOfBounds      = errors.New("outcome is outside of storage bounds")
	ErrLengthMismatch   = errors.New("number of adaptors does not match number of outcomes")
	ErrUnknownOutcome   = errors.New("adaptor tagged with an outcome that is not stored")
	ErrDuplicateOutcome = errors.New("adaptor tagged with an outcome more than once")
)

// Element is everything a party knows about the settlement of one outcome.
type Element struct {
	Payout                   uint64
	Payload                  []byte
	AnticipationPoint        *btcec.PublicKey
	OwnPreSignature          adaptor.PreSignature
	CounterpartyPreSignature adaptor.PreSignature
}

// TaggedPreSignature is a pre-signature labelled with the outcome it settles.
type TaggedPreSignature struct {
	Outcome      outcome.Outcome
	PreSignature adaptor.PreSignature
}

// ArrayStorage is a dense outcome-indexed store sized to an outcome space.
type ArrayStorage struct {
	elements []Element
	present  []bool
}

func NewArrayStorage(space outcome.Space) *ArrayStorage {
	return &ArrayStorage{
		elements: make([]Element, space.Size()),
		present:  make([]bool, space.Size()),
	}
}

func (s *ArrayStorage) PutElement(o outcome.Outcome, e Element) error {
	if uint64(o) >= uint64(len(s.elements)) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, o)
	}
	s.elements[o] = e
	s.present[o] = true
	return nil
}

func (s *ArrayStorage) GetElement(o outcome.Outcome) (Element, bool) {
	if uint64(o) >= uint64(len(s.elements)) || !s.present[o] {
		return Element{}, false
	}
	return s.elements[o], true
}

// GetAllMyAdaptors returns the own pre-signature of every stored outcome in
// ascending outcome order.
func (s *ArrayStorage) GetAllMyAdaptors() []TaggedPreSignature {
	out := make([]TaggedPreSignature, 0, len(s.elements))
	for i, e := range s.elements {
		if !s.present[i] {
			continue
		}
		out = append(out, TaggedPreSignature{Outcome: outcome.Outcome(i), PreSignature: e.OwnPreSignature})
	}
	return out
}

// UpdateCPAdaptors stores the counterparty pre-signatures by their outcome
// tag. Every stored outcome must be tagged exactly once; on error nothing is
// written.
func (s *ArrayStorage) UpdateCPAdaptors(tagged []TaggedPreSignature) error {
	if len(tagged) != s.Len() {
		return fmt.Errorf("%w: got %d, stored %d", ErrLengthMismatch, len(tagged), s.Len())
	}

	seen := make([]bool, len(s.elements))
	for _, ts := range tagged {
		o := ts.Outcome
		if uint64(o) >= uint64(len(s.elements)) || !s.present[o] {
			return fmt.Errorf("%w: %d", ErrUnknownOutcome, o)
		}
		if seen[o] {
			return fmt.Errorf("%w: %d", ErrDuplicateOutcome, o)
		}
		seen[o] = true
	}

	for _, ts := range tagged {
		s.elements[ts.Outcome].CounterpartyPreSignature = ts.PreSignature
	}
	return nil
}

// Elements returns a copy of the stored elements in ascending outcome order.
// Byte slices are cloned, so callers cannot change what is stored.
func (s *ArrayStorage) Elements() []Element {
	out := make([]Element, 0, len(s.elements))
	for i, e := range s.elements {
		if s.present[i] {
			out = append(out, e.clone())
		}
	}
	return out
}

func (e Element) clone() Element {
	e.Payload = slices.Clone(e.Payload)
	e.OwnPreSignature = slices.Clone(e.OwnPreSignature)
	e.CounterpartyPreSignature = slices.Clone(e.CounterpartyPreSignature)
	return e
}

// Len is the number of stored outcomes.
func (s *ArrayStorage) Len() int {
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Cap is the number of outcomes the storage can hold.
func (s *ArrayStorage) Cap() int {
	return len(s.elements)
}

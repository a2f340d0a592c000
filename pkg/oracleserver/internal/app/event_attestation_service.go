package app

import (
	"context"
	"errors"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
)

// EventAttestationProvider defines the interface for retrieving an event's
// attestation. The announcement is consulted first so that requests for
// events still in the future are answered without blocking.
type EventAttestationProvider interface {
	EventAnnouncementProvider
	EventAttestation(ctx context.Context, eventID string) (oracle.Attestation, error)
}

// EventAttestationService retrieves event attestations using the configured provider.
type EventAttestationService struct {
	provider EventAttestationProvider
	now      func() time.Time
}

// EventAttestation returns the attestation of the event, or a not-ready error
// when the attestation time has not been reached yet.
func (s *EventAttestationService) EventAttestation(ctx context.Context, eventID EventID) (oracle.Attestation, error) {
	if err := eventID.Verify(); err != nil {
		return oracle.Attestation{}, err
	}

	ann, err := s.provider.EventAnnouncement(ctx, string(eventID))
	if err != nil {
		return oracle.Attestation{}, mapOracleError(err, NewEventAttestationProviderError)
	}
	if ann.NextAttestationTime.After(s.now()) {
		return oracle.Attestation{}, NewEventNotYetAttestedError(oracle.ErrNotYetAttested)
	}

	att, err := s.provider.EventAttestation(ctx, string(eventID))
	if err != nil {
		return oracle.Attestation{}, mapOracleError(err, NewEventAttestationProviderError)
	}
	if att.Secret == nil {
		return oracle.Attestation{}, NewEventAttestationProviderError(errors.New("provider returned an attestation without secret"))
	}
	return att, nil
}

// NewEventAttestationService creates a new EventAttestationService with the given provider.
// Panics if the provider is nil.
func NewEventAttestationService(provider EventAttestationProvider) *EventAttestationService {
	if provider == nil {
		panic("event attestation provider is nil")
	}
	return &EventAttestationService{provider: provider, now: time.Now}
}

// NewEventAttestationProviderError returns an Error indicating that the oracle failed to attest the event.
func NewEventAttestationProviderError(err error) Error {
	return NewProviderFailureError(
		err.Error(),
		"Unable to retrieve the event attestation due to an internal error. Please try again later or contact the support team.",
	)
}

// NewEventNotYetAttestedError returns an Error indicating that the event is known
// but its attestation is not available yet.
func NewEventNotYetAttestedError(err error) Error {
	return NewNotReadyError(err.Error(), "The event has not been attested yet. Please retry after the announced attestation time.")
}

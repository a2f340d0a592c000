package app

import (
	"context"
	"errors"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
)

// EventAnnouncementProvider defines the interface for retrieving the
// commitment the oracle publishes before an event happens.
type EventAnnouncementProvider interface {
	EventAnnouncement(ctx context.Context, eventID string) (oracle.Announcement, error)
}

// EventAnnouncementService retrieves event announcements using the configured provider.
type EventAnnouncementService struct {
	provider EventAnnouncementProvider
}

// EventAnnouncement validates the event identifier and returns the announcement for it.
func (s *EventAnnouncementService) EventAnnouncement(ctx context.Context, eventID EventID) (oracle.Announcement, error) {
	if err := eventID.Verify(); err != nil {
		return oracle.Announcement{}, err
	}

	ann, err := s.provider.EventAnnouncement(ctx, string(eventID))
	if err != nil {
		return oracle.Announcement{}, mapOracleError(err, NewEventAnnouncementProviderError)
	}
	if ann.PublicKey == nil || ann.PublicNonce == nil {
		return oracle.Announcement{}, NewEventAnnouncementProviderError(errors.New("provider returned an incomplete announcement"))
	}
	return ann, nil
}

// NewEventAnnouncementService creates a new EventAnnouncementService with the given provider.
// Panics if the provider is nil.
func NewEventAnnouncementService(provider EventAnnouncementProvider) *EventAnnouncementService {
	if provider == nil {
		panic("event announcement provider is nil")
	}
	return &EventAnnouncementService{provider: provider}
}

// NewEventAnnouncementProviderError returns an Error indicating that the oracle failed to announce the event.
func NewEventAnnouncementProviderError(err error) Error {
	return NewProviderFailureError(
		err.Error(),
		"Unable to retrieve the event announcement due to an internal error. Please try again later or contact the support team.",
	)
}

func mapOracleError(err error, fallback func(error) Error) Error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewContextCancellationError()
	case errors.Is(err, oracle.ErrUnknownEvent):
		return NewUnknownEventError(err)
	case errors.Is(err, oracle.ErrNotYetAttested):
		return NewEventNotYetAttestedError(err)
	default:
		return fallback(err)
	}
}

package adapters

import (
	"context"
	"errors"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/btcsuite/btcd/btcec/v2"
)

// ErrOracleUnavailable is returned by every call of UnavailableOracleProvider.
var ErrOracleUnavailable = errors.New("no oracle configured for the server")

// UnavailableOracleProvider is the provider the server starts with until an
// oracle is configured. Every request it serves fails with a provider error.
type UnavailableOracleProvider struct{}

func (UnavailableOracleProvider) PublicKey(context.Context) (*btcec.PublicKey, error) {
	return nil, ErrOracleUnavailable
}

func (UnavailableOracleProvider) EventAnnouncement(context.Context, string) (oracle.Announcement, error) {
	return oracle.Announcement{}, ErrOracleUnavailable
}

func (UnavailableOracleProvider) EventAttestation(context.Context, string) (oracle.Attestation, error) {
	return oracle.Attestation{}, ErrOracleUnavailable
}

// NewUnavailableOracleProvider returns the placeholder provider.
func NewUnavailableOracleProvider() *UnavailableOracleProvider {
	return &UnavailableOracleProvider{}
}

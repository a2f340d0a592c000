// Package oracle defines the oracle collaborator the controller settles
// against, and a local oracle attesting a random integer outcome.
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrNotYetAttested = errors.New("event is not attested yet")
)

// Announcement is what the oracle commits to before the event happens.
type Announcement struct {
	PublicKey           *btcec.PublicKey
	PublicNonce         *btcec.PublicKey
	NextAttestationTime time.Time
}

// Attestation reveals the outcome of an event and the secret unlocking the
// pre-signatures bound to it.
type Attestation struct {
	Outcome uint32
	Secret  *btcec.ModNScalar
}

// Oracle is the external party announcing and attesting events.
type Oracle interface {
	PublicKey(ctx context.Context) (*btcec.PublicKey, error)
	EventAnnouncement(ctx context.Context, eventID string) (Announcement, error)
	EventAttestation(ctx context.Context, eventID string) (Attestation, error)
}

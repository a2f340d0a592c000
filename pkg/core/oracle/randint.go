package oracle

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

// RandIntOracle is a local oracle drawing a uniformly random outcome from its
// space for every event it is asked about. Each event gets its own nonce.
type RandIntOracle struct {
	key      *btcec.PrivateKey
	space    outcome.Space
	strategy crypto.Strategy
	fixed    *outcome.Outcome
	delay    time.Duration
	now      func() time.Time

	mu     sync.Mutex
	events map[string]*randIntEvent
}

type randIntEvent struct {
	nonce       *btcec.PrivateKey
	outcome     outcome.Outcome
	attestAfter time.Time
}

// RandIntOption configures a RandIntOracle.
type RandIntOption func(*RandIntOracle)

// WithOutcome makes every event attest the given outcome.
func WithOutcome(o outcome.Outcome) RandIntOption {
	return func(r *RandIntOracle) { r.fixed = &o }
}

// WithStrategy selects the crypto strategy attestations are derived with. It
// must match the strategy the parties use.
func WithStrategy(s crypto.Strategy) RandIntOption {
	return func(r *RandIntOracle) { r.strategy = s }
}

// WithPrivateKey pins the oracle's long-term key.
func WithPrivateKey(key *btcec.PrivateKey) RandIntOption {
	return func(r *RandIntOracle) { r.key = key }
}

// WithAttestationDelay postpones attestations by d after the announcement.
func WithAttestationDelay(d time.Duration) RandIntOption {
	return func(r *RandIntOracle) { r.delay = d }
}

func NewRandIntOracle(space outcome.Space, opts ...RandIntOption) (*RandIntOracle, error) {
	r := &RandIntOracle{
		space:    space,
		strategy: crypto.Basis{},
		now:      time.Now,
		events:   make(map[string]*randIntEvent),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fixed != nil && !space.Contains(*r.fixed) {
		return nil, fmt.Errorf("%w: %d", crypto.ErrOutcomeOutOfRange, *r.fixed)
	}
	if r.key == nil {
		key, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		r.key = key
	}
	return r, nil
}

func (r *RandIntOracle) PublicKey(context.Context) (*btcec.PublicKey, error) {
	return r.key.PubKey(), nil
}

func (r *RandIntOracle) EventAnnouncement(_ context.Context, eventID string) (Announcement, error) {
	ev, err := r.event(eventID)
	if err != nil {
		return Announcement{}, err
	}
	return Announcement{
		PublicKey:           r.key.PubKey(),
		PublicNonce:         ev.nonce.PubKey(),
		NextAttestationTime: ev.attestAfter,
	}, nil
}

// EventAttestation blocks until the attestation time of the event or until
// ctx is done.
func (r *RandIntOracle) EventAttestation(ctx context.Context, eventID string) (Attestation, error) {
	ev, err := r.event(eventID)
	if err != nil {
		return Attestation{}, err
	}

	if wait := ev.attestAfter.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Attestation{}, ctx.Err()
		case <-timer.C:
		}
	}

	attestor, err := r.strategy.NewAttestor(r.key, ev.nonce, r.space)
	if err != nil {
		return Attestation{}, err
	}
	secret, err := attestor.Attestation(ev.outcome)
	if err != nil {
		return Attestation{}, err
	}
	return Attestation{Outcome: uint32(ev.outcome), Secret: secret}, nil
}

func (r *RandIntOracle) event(eventID string) (*randIntEvent, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: empty event id", ErrUnknownEvent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ev, ok := r.events[eventID]; ok {
		return ev, nil
	}

	nonce, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	o, err := r.draw()
	if err != nil {
		return nil, err
	}
	ev := &randIntEvent{nonce: nonce, outcome: o, attestAfter: r.now().Add(r.delay)}
	r.events[eventID] = ev
	return ev, nil
}

func (r *RandIntOracle) draw() (outcome.Outcome, error) {
	if r.fixed != nil {
		return *r.fixed, nil
	}
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(r.space.Size()))
	if err != nil {
		return 0, err
	}
	return outcome.Outcome(n.Uint64()), nil
}

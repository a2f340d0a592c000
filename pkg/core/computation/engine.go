// Package computation turns a flattened contract into the per-outcome
// settlement material of one party, and checks the counterparty's.
package computation

import (
	"context"
	"errors"
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/cet"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/storage"
	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrLengthMismatch   = errors.New("counterparty adaptors and storage elements differ in length")
	ErrUnknownOutcome   = errors.New("counterparty adaptor tagged with an unknown outcome")
	ErrDuplicateOutcome = errors.New("counterparty adaptor tagged with an outcome more than once")
	ErrMissingParams    = errors.New("missing computation parameters")
)

// Params are the read-only inputs shared by every outcome.
type Params struct {
	TotalCollateral uint64
	SigningKey      *btcec.PrivateKey
	OraclePublicKey *btcec.PublicKey
	OracleNonce     *btcec.PublicKey
	Space           outcome.Space
}

// Engine computes storage elements with a pluggable scheme, strategy,
// payload builder and executor.
type Engine struct {
	scheme   adaptor.Scheme
	strategy crypto.Strategy
	payloads cet.PayloadBuilder
	executor Executor
}

// Option configures an Engine.
type Option func(*Engine)

func WithScheme(s adaptor.Scheme) Option { return func(e *Engine) { e.scheme = s } }

func WithStrategy(s crypto.Strategy) Option { return func(e *Engine) { e.strategy = s } }

func WithPayloadBuilder(b cet.PayloadBuilder) Option { return func(e *Engine) { e.payloads = b } }

func WithExecutor(x Executor) Option { return func(e *Engine) { e.executor = x } }

// New returns an engine using Schnorr adaptors, the basis strategy, an empty
// settlement transaction builder and a parallel executor unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		scheme:   adaptor.Schnorr{},
		strategy: crypto.Basis{},
		payloads: cet.NewTxBuilder(),
		executor: Parallel{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Scheme() adaptor.Scheme { return e.scheme }

func (e *Engine) Strategy() crypto.Strategy { return e.strategy }

// ComputeStorageElements builds one element per entry of parsed, in the
// order of parsed.
func (e *Engine) ComputeStorageElements(ctx context.Context, parsed contract.ParsedContract, p Params) ([]storage.Element, error) {
	if p.SigningKey == nil {
		return nil, fmt.Errorf("%w: signing key", ErrMissingParams)
	}
	anticipator, err := e.strategy.NewAnticipator(p.OraclePublicKey, p.OracleNonce, p.Space)
	if err != nil {
		return nil, fmt.Errorf("anticipator: %w", err)
	}

	elements := make([]storage.Element, len(parsed))
	err = e.executor.Run(ctx, len(parsed), func(_ context.Context, i int) error {
		entry := parsed[i]

		payload, err := e.payloads.Payload(entry.Payout, p.TotalCollateral)
		if err != nil {
			return fmt.Errorf("outcome %d: payload: %w", entry.Outcome, err)
		}
		point, err := anticipator.AnticipationPoint(entry.Outcome)
		if err != nil {
			return fmt.Errorf("outcome %d: anticipation point: %w", entry.Outcome, err)
		}
		ps, err := e.scheme.PreSign(p.SigningKey, cet.Message(payload), point)
		if err != nil {
			return fmt.Errorf("outcome %d: pre-sign: %w", entry.Outcome, err)
		}

		elements[i] = storage.Element{
			Payout:            entry.Payout,
			Payload:           payload,
			AnticipationPoint: point,
			OwnPreSignature:   ps,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// VerifyCPAdaptors pre-verifies every counterparty adaptor against the
// element of the outcome it is tagged with. elements must be indexed by
// outcome. Every outcome must be tagged exactly once. It reports false on
// the first adaptor that does not verify.
func (e *Engine) VerifyCPAdaptors(ctx context.Context, vk *btcec.PublicKey, cpAdaptors []storage.TaggedPreSignature, elements []storage.Element) (bool, error) {
	if len(cpAdaptors) != len(elements) {
		return false, fmt.Errorf("%w: %d adaptors, %d elements", ErrLengthMismatch, len(cpAdaptors), len(elements))
	}
	seen := make([]bool, len(elements))
	for _, a := range cpAdaptors {
		if uint64(a.Outcome) >= uint64(len(elements)) {
			return false, fmt.Errorf("%w: %d", ErrUnknownOutcome, a.Outcome)
		}
		if seen[a.Outcome] {
			return false, fmt.Errorf("%w: %d", ErrDuplicateOutcome, a.Outcome)
		}
		seen[a.Outcome] = true
	}

	for _, a := range cpAdaptors {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		el := elements[a.Outcome]
		if !e.scheme.PreVerify(vk, cet.Message(el.Payload), el.AnticipationPoint, a.PreSignature) {
			return false, nil
		}
	}
	return true, nil
}

package crypto

import (
	"errors"
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrDegenerateTweak   = errors.New("outcome tweak reduced to zero")
	ErrDegeneratePoint   = errors.New("anticipation point is the point at infinity")
	ErrDegenerateScalar  = errors.New("attestation reduced to zero")
	ErrOutcomeOutOfRange = errors.New("outcome is outside of the outcome space")
	ErrMissingKey        = errors.New("oracle key or nonce is missing")
	ErrUnknownStrategy   = errors.New("unknown crypto strategy")
)

// Anticipator derives anticipation points from an oracle's public key and nonce.
type Anticipator interface {
	AnticipationPoint(o outcome.Outcome) (*btcec.PublicKey, error)
}

// Attestor derives attestations from an oracle's private key and nonce.
type Attestor interface {
	Attestation(o outcome.Outcome) (*btcec.ModNScalar, error)
}

// Strategy is a way of binding outcomes to oracle keys. The anticipator and
// attestor built by one strategy from matching key pairs always agree:
// Attestation(o)·G == AnticipationPoint(o).
type Strategy interface {
	Name() string
	NewAnticipator(publicKey, publicNonce *btcec.PublicKey, space outcome.Space) (Anticipator, error)
	NewAttestor(privateKey, privateNonce *btcec.PrivateKey, space outcome.Space) (Attestor, error)
}

const (
	DirectStrategyName = "direct"
	BasisStrategyName  = "basis"
)

// StrategyNames lists the names accepted by StrategyByName.
func StrategyNames() []string {
	return []string{DirectStrategyName, BasisStrategyName}
}

// StrategyByName returns the strategy registered under the given name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case DirectStrategyName:
		return Direct{}, nil
	case BasisStrategyName:
		return Basis{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

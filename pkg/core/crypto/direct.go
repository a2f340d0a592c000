package crypto

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

// Direct hashes every outcome independently. Each call costs one hash and one
// scalar multiplication and keeps no state besides the keys.
type Direct struct{}

func (Direct) Name() string { return DirectStrategyName }

func (Direct) NewAnticipator(publicKey, publicNonce *btcec.PublicKey, space outcome.Space) (Anticipator, error) {
	if publicKey == nil || publicNonce == nil {
		return nil, ErrMissingKey
	}
	return &directAnticipator{publicKey: publicKey, publicNonce: publicNonce, space: space}, nil
}

func (Direct) NewAttestor(privateKey, privateNonce *btcec.PrivateKey, space outcome.Space) (Attestor, error) {
	if privateKey == nil || privateNonce == nil {
		return nil, ErrMissingKey
	}
	return &directAttestor{
		privateKey:   privateKey,
		privateNonce: privateNonce,
		publicKey:    privateKey.PubKey(),
		publicNonce:  privateNonce.PubKey(),
		space:        space,
	}, nil
}

type directAnticipator struct {
	publicKey   *btcec.PublicKey
	publicNonce *btcec.PublicKey
	space       outcome.Space
}

func (a *directAnticipator) AnticipationPoint(o outcome.Outcome) (*btcec.PublicKey, error) {
	if !a.space.Contains(o) {
		return nil, ErrOutcomeOutOfRange
	}
	t, err := Tweak(a.publicNonce, a.publicKey, o)
	if err != nil {
		return nil, err
	}
	p, err := anticipationPoint(a.publicNonce, a.publicKey, t)
	if err != nil {
		return nil, err
	}
	return toPublicKey(p)
}

type directAttestor struct {
	privateKey   *btcec.PrivateKey
	privateNonce *btcec.PrivateKey
	publicKey    *btcec.PublicKey
	publicNonce  *btcec.PublicKey
	space        outcome.Space
}

func (a *directAttestor) Attestation(o outcome.Outcome) (*btcec.ModNScalar, error) {
	if !a.space.Contains(o) {
		return nil, ErrOutcomeOutOfRange
	}
	t, err := Tweak(a.publicNonce, a.publicKey, o)
	if err != nil {
		return nil, err
	}
	return attestation(a.privateNonce, a.privateKey, t)
}

package crypto

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

// Basis precomputes one term per bit position, treating bit position i as if it
// were outcome value i, and combines the terms of the set bits of an outcome.
// Construction costs NbDigits hashes; each outcome then costs popcount additions.
//
// For a non-zero outcome with set bits B:
//
//	AnticipationPoint = Σ_{i∈B} (R + t_i·P) = |B|·R + (Σ t_i)·P
//	Attestation       = Σ_{i∈B} (k + t_i·x) = |B|·k + (Σ t_i)·x
//
// so the attestation stays the discrete log of the anticipation point. The
// all-zero outcome has no set bit and gets its own term under a separate tag.
type Basis struct{}

func (Basis) Name() string { return BasisStrategyName }

func (Basis) NewAnticipator(publicKey, publicNonce *btcec.PublicKey, space outcome.Space) (Anticipator, error) {
	if publicKey == nil || publicNonce == nil {
		return nil, ErrMissingKey
	}

	a := &basisAnticipator{space: space, bits: make([]btcec.JacobianPoint, space.NbDigits)}
	for i := range a.bits {
		t, err := Tweak(publicNonce, publicKey, outcome.Outcome(i))
		if err != nil {
			return nil, err
		}
		p, err := anticipationPoint(publicNonce, publicKey, t)
		if err != nil {
			return nil, err
		}
		a.bits[i].Set(p)
		a.bits[i].ToAffine()
	}

	t, err := zeroTweak(publicNonce, publicKey)
	if err != nil {
		return nil, err
	}
	p, err := anticipationPoint(publicNonce, publicKey, t)
	if err != nil {
		return nil, err
	}
	a.zero.Set(p)
	a.zero.ToAffine()
	return a, nil
}

func (Basis) NewAttestor(privateKey, privateNonce *btcec.PrivateKey, space outcome.Space) (Attestor, error) {
	if privateKey == nil || privateNonce == nil {
		return nil, ErrMissingKey
	}

	publicKey, publicNonce := privateKey.PubKey(), privateNonce.PubKey()
	a := &basisAttestor{space: space, bits: make([]btcec.ModNScalar, space.NbDigits)}
	for i := range a.bits {
		t, err := Tweak(publicNonce, publicKey, outcome.Outcome(i))
		if err != nil {
			return nil, err
		}
		s, err := attestation(privateNonce, privateKey, t)
		if err != nil {
			return nil, err
		}
		a.bits[i].Set(s)
	}

	t, err := zeroTweak(publicNonce, publicKey)
	if err != nil {
		return nil, err
	}
	s, err := attestation(privateNonce, privateKey, t)
	if err != nil {
		return nil, err
	}
	a.zero.Set(s)
	return a, nil
}

// decomposition is either the zero outcome or the positions of the set bits.
type decomposition struct {
	zero bool
	bits []uint8
}

func decompose(o outcome.Outcome, space outcome.Space) (decomposition, error) {
	if !space.Contains(o) {
		return decomposition{}, ErrOutcomeOutOfRange
	}
	if o.IsZero() {
		return decomposition{zero: true}, nil
	}

	d := decomposition{bits: make([]uint8, 0, space.NbDigits)}
	for i := uint8(0); i < space.NbDigits; i++ {
		if o.Bit(i) {
			d.bits = append(d.bits, i)
		}
	}
	if len(d.bits) == 0 {
		return decomposition{}, ErrOutcomeOutOfRange
	}
	return d, nil
}

// basisAnticipator is safe for concurrent use; its terms are read only.
type basisAnticipator struct {
	space outcome.Space
	bits  []btcec.JacobianPoint
	zero  btcec.JacobianPoint
}

func (a *basisAnticipator) AnticipationPoint(o outcome.Outcome) (*btcec.PublicKey, error) {
	d, err := decompose(o, a.space)
	if err != nil {
		return nil, err
	}

	var acc btcec.JacobianPoint
	if d.zero {
		acc.Set(&a.zero)
		return toPublicKey(&acc)
	}

	for _, i := range d.bits {
		var sum btcec.JacobianPoint
		btcec.AddNonConst(&acc, &a.bits[i], &sum)
		acc.Set(&sum)
	}
	return toPublicKey(&acc)
}

type basisAttestor struct {
	space outcome.Space
	bits  []btcec.ModNScalar
	zero  btcec.ModNScalar
}

func (a *basisAttestor) Attestation(o outcome.Outcome) (*btcec.ModNScalar, error) {
	d, err := decompose(o, a.space)
	if err != nil {
		return nil, err
	}

	acc := new(btcec.ModNScalar)
	if d.zero {
		return acc.Set(&a.zero), nil
	}

	for _, i := range d.bits {
		acc.Add(&a.bits[i])
	}
	if acc.IsZero() {
		return nil, ErrDegenerateScalar
	}
	return acc, nil
}

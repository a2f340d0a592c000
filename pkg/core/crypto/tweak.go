package crypto

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// zeroOutcomeTag separates the basis term of the all-zero outcome from every
// per-bit term.
var zeroOutcomeTag = []byte("DLC/basis/zero-outcome")

// Tweak hashes (nonce, public key, outcome) into the scalar that binds the
// outcome to the oracle's keys.
func Tweak(publicNonce, publicKey *btcec.PublicKey, o outcome.Outcome) (*btcec.ModNScalar, error) {
	ob := o.Bytes()
	h := chainhash.TaggedHash(chainhash.TagBIP0340Challenge,
		publicNonce.SerializeCompressed(),
		publicKey.SerializeCompressed(),
		ob[:],
	)
	return hashToScalar(h)
}

func zeroTweak(publicNonce, publicKey *btcec.PublicKey) (*btcec.ModNScalar, error) {
	h := chainhash.TaggedHash(zeroOutcomeTag, publicNonce.SerializeCompressed(), publicKey.SerializeCompressed())
	return hashToScalar(h)
}

func hashToScalar(h *chainhash.Hash) (*btcec.ModNScalar, error) {
	var t btcec.ModNScalar
	t.SetByteSlice(h[:])
	if t.IsZero() {
		return nil, ErrDegenerateTweak
	}
	return &t, nil
}

// anticipationPoint computes R + t·P.
func anticipationPoint(publicNonce, publicKey *btcec.PublicKey, t *btcec.ModNScalar) (*btcec.JacobianPoint, error) {
	var r, p, tp, sum btcec.JacobianPoint
	publicNonce.AsJacobian(&r)
	publicKey.AsJacobian(&p)

	btcec.ScalarMultNonConst(t, &p, &tp)
	btcec.AddNonConst(&r, &tp, &sum)
	if isInfinity(&sum) {
		return nil, ErrDegeneratePoint
	}
	return &sum, nil
}

// attestation computes k + t·x.
func attestation(privateNonce, privateKey *btcec.PrivateKey, t *btcec.ModNScalar) (*btcec.ModNScalar, error) {
	s := new(btcec.ModNScalar).Mul2(t, &privateKey.Key).Add(&privateNonce.Key)
	if s.IsZero() {
		return nil, ErrDegenerateScalar
	}
	return s, nil
}

func isInfinity(p *btcec.JacobianPoint) bool {
	p.X.Normalize()
	p.Y.Normalize()
	p.Z.Normalize()
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

func toPublicKey(p *btcec.JacobianPoint) (*btcec.PublicKey, error) {
	if isInfinity(p) {
		return nil, ErrDegeneratePoint
	}
	p.ToAffine()
	return btcec.NewPublicKey(&p.X, &p.Y), nil
}

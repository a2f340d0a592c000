// Package adaptor implements adaptor signatures: pre-signatures that become
// valid signatures once the discrete log of an anticipation point is known,
// and that reveal that discrete log when compared to the completed signature.
package adaptor

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	ErrUnknownScheme        = errors.New("unknown adaptor scheme")
	ErrMalformedPreSig      = errors.New("malformed pre-signature")
	ErrMalformedSignature   = errors.New("malformed signature")
	ErrInvalidMessage       = errors.New("message must be 32 bytes")
	ErrSecretMismatch       = errors.New("extracted secret does not match anticipation point")
	ErrSignatureMismatch    = errors.New("signature was not adapted from pre-signature")
	ErrDegenerateNonce      = errors.New("nonce generation produced a degenerate point")
	ErrDegenerateAdaptation = errors.New("adaptation produced a degenerate signature")
)

// PreSignature is an encrypted signature bound to an anticipation point.
type PreSignature []byte

// Signature is a complete signature in the scheme's wire encoding.
type Signature []byte

// Scheme is an adaptor signature scheme over secp256k1.
type Scheme interface {
	Name() string

	// PreSign encrypts a signature of msg under ap.
	PreSign(sk *btcec.PrivateKey, msg []byte, ap *btcec.PublicKey) (PreSignature, error)

	// PreVerify reports whether ps adapts into a valid signature of msg under
	// vk once the discrete log of ap is known. Malformed input yields false.
	PreVerify(vk *btcec.PublicKey, msg []byte, ap *btcec.PublicKey, ps PreSignature) bool

	// Adapt decrypts ps with the discrete log of its anticipation point.
	Adapt(ps PreSignature, secret *btcec.ModNScalar) (Signature, error)

	// Extract recovers the discrete log of ap from a pre-signature and its adaptation.
	Extract(sig Signature, ps PreSignature, ap *btcec.PublicKey) (*btcec.ModNScalar, error)

	Sign(sk *btcec.PrivateKey, msg []byte) (Signature, error)
	Verify(vk *btcec.PublicKey, msg []byte, sig Signature) bool
}

const (
	SchnorrSchemeName = "schnorr"
	ECDSASchemeName   = "ecdsa"
)

// SchemeNames lists the names accepted by SchemeByName.
func SchemeNames() []string {
	return []string{SchnorrSchemeName, ECDSASchemeName}
}

// SchemeByName returns the scheme registered under the given name.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case SchnorrSchemeName:
		return Schnorr{}, nil
	case ECDSASchemeName:
		return ECDSA{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

func checkMessage(msg []byte) error {
	if len(msg) != 32 {
		return fmt.Errorf("%w: got %d", ErrInvalidMessage, len(msg))
	}
	return nil
}

func parseScalar(b []byte) (*btcec.ModNScalar, bool) {
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return nil, false
	}
	return &s, true
}

func isInfinity(p *btcec.JacobianPoint) bool {
	p.X.Normalize()
	p.Y.Normalize()
	p.Z.Normalize()
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

func sameAffine(p *btcec.JacobianPoint, q *btcec.PublicKey) bool {
	if isInfinity(p) {
		return false
	}
	p.ToAffine()
	return btcec.NewPublicKey(&p.X, &p.Y).IsEqual(q)
}

func pointBytes(p *btcec.JacobianPoint) []byte {
	p.ToAffine()
	return btcec.NewPublicKey(&p.X, &p.Y).SerializeCompressed()
}

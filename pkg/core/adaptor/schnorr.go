package adaptor

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	schnorrPreSigLen   = 65
	maxNonceIterations = 1 << 10

	compressedEven byte = 0x02
	compressedOdd  byte = 0x03
)

var nonceExtraTag = []byte("DLC/adaptor/nonce")

// Schnorr is the BIP340 adaptor scheme. A pre-signature is R'(33) ‖ s'(32)
// where R' = kG + T always has an even y coordinate, so the adapted
// signature R'.x ‖ s'+t is a plain BIP340 signature.
type Schnorr struct{}

func (Schnorr) Name() string { return SchnorrSchemeName }

func (Schnorr) PreSign(sk *btcec.PrivateKey, msg []byte, ap *btcec.PublicKey) (PreSignature, error) {
	if err := checkMessage(msg); err != nil {
		return nil, err
	}

	d := new(btcec.ModNScalar).Set(&sk.Key)
	pub := sk.PubKey()
	if pub.SerializeCompressed()[0] == compressedOdd {
		d.Negate()
	}
	pubX := schnorr.SerializePubKey(pub)
	dBytes := d.Bytes()
	extra := chainhash.TaggedHash(nonceExtraTag, ap.SerializeCompressed())

	var t btcec.JacobianPoint
	ap.AsJacobian(&t)

	for iter := uint32(0); iter < maxNonceIterations; iter++ {
		k := btcec.NonceRFC6979(dBytes[:], msg, extra[:], nil, iter)

		var kG, r btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(k, &kG)
		btcec.AddNonConst(&kG, &t, &r)
		if isInfinity(&r) {
			k.Zero()
			continue
		}
		r.ToAffine()
		if r.Y.IsOdd() {
			k.Zero()
			continue
		}

		rx := r.X.Bytes()
		e := schnorrChallenge(rx[:], pubX, msg)
		s := new(btcec.ModNScalar).Mul2(e, d).Add(k)
		k.Zero()
		sb := s.Bytes()

		ps := make(PreSignature, 0, schnorrPreSigLen)
		ps = append(ps, compressedEven)
		ps = append(ps, rx[:]...)
		ps = append(ps, sb[:]...)
		return ps, nil
	}
	return nil, ErrDegenerateNonce
}

func (Schnorr) PreVerify(vk *btcec.PublicKey, msg []byte, ap *btcec.PublicKey, ps PreSignature) bool {
	if vk == nil || ap == nil || len(msg) != 32 {
		return false
	}
	r, s, err := parseSchnorrPreSig(ps)
	if err != nil {
		return false
	}
	pubX := schnorr.SerializePubKey(vk)
	p, err := schnorr.ParsePubKey(pubX)
	if err != nil {
		return false
	}
	e := schnorrChallenge(ps[1:33], pubX, msg)

	// T = R' + eP - s'G
	var rj, pj, eP, negSG, sum, t btcec.JacobianPoint
	r.AsJacobian(&rj)
	p.AsJacobian(&pj)
	btcec.ScalarMultNonConst(e, &pj, &eP)
	btcec.ScalarBaseMultNonConst(new(btcec.ModNScalar).NegateVal(s), &negSG)
	btcec.AddNonConst(&rj, &eP, &sum)
	btcec.AddNonConst(&sum, &negSG, &t)

	return sameAffine(&t, ap)
}

func (Schnorr) Adapt(ps PreSignature, secret *btcec.ModNScalar) (Signature, error) {
	_, s, err := parseSchnorrPreSig(ps)
	if err != nil {
		return nil, err
	}
	var rx btcec.FieldVal
	rx.SetByteSlice(ps[1:33])

	adapted := new(btcec.ModNScalar).Add2(s, secret)
	if adapted.IsZero() {
		return nil, ErrDegenerateAdaptation
	}
	return schnorr.NewSignature(&rx, adapted).Serialize(), nil
}

func (Schnorr) Extract(sig Signature, ps PreSignature, ap *btcec.PublicKey) (*btcec.ModNScalar, error) {
	_, pre, err := parseSchnorrPreSig(ps)
	if err != nil {
		return nil, err
	}
	if len(sig) != schnorr.SignatureSize {
		return nil, ErrMalformedSignature
	}
	if !bytes.Equal(sig[:32], ps[1:33]) {
		return nil, ErrSignatureMismatch
	}
	s, ok := parseScalar(sig[32:])
	if !ok {
		return nil, ErrMalformedSignature
	}

	secret := new(btcec.ModNScalar).NegateVal(pre).Add(s)
	if !matchesPoint(secret, ap) {
		return nil, ErrSecretMismatch
	}
	return secret, nil
}

func (Schnorr) Sign(sk *btcec.PrivateKey, msg []byte) (Signature, error) {
	if err := checkMessage(msg); err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign(sk, msg)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func (Schnorr) Verify(vk *btcec.PublicKey, msg []byte, sig Signature) bool {
	if vk == nil || len(msg) != 32 {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(msg, vk)
}

func parseSchnorrPreSig(ps PreSignature) (*btcec.PublicKey, *btcec.ModNScalar, error) {
	if len(ps) != schnorrPreSigLen || ps[0] != compressedEven {
		return nil, nil, ErrMalformedPreSig
	}
	r, err := btcec.ParsePubKey(ps[:33])
	if err != nil {
		return nil, nil, ErrMalformedPreSig
	}
	s, ok := parseScalar(ps[33:])
	if !ok {
		return nil, nil, ErrMalformedPreSig
	}
	return r, s, nil
}

func schnorrChallenge(rx, pubX, msg []byte) *btcec.ModNScalar {
	h := chainhash.TaggedHash(chainhash.TagBIP0340Challenge, rx, pubX, msg)
	var e btcec.ModNScalar
	e.SetByteSlice(h[:])
	return &e
}

func matchesPoint(secret *btcec.ModNScalar, ap *btcec.PublicKey) bool {
	var p btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(secret, &p)
	return sameAffine(&p, ap)
}

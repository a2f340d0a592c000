package adaptor

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const ecdsaPreSigLen = 33 + 33 + 32 + 32 + 32

// ECDSA is the ECDSA adaptor scheme. A pre-signature is
// R(33) ‖ R'(33) ‖ s'(32) ‖ c(32) ‖ z(32) with R = kG, R' = kY and
// s' = k⁻¹(m + r·x), r = x(R'); (c, z) proves R and R' share k.
// Adapted signatures are low-S and DER encoded.
type ECDSA struct{}

func (ECDSA) Name() string { return ECDSASchemeName }

func (ECDSA) PreSign(sk *btcec.PrivateKey, msg []byte, ap *btcec.PublicKey) (PreSignature, error) {
	if err := checkMessage(msg); err != nil {
		return nil, err
	}
	m := messageScalar(msg)

	var y btcec.JacobianPoint
	ap.AsJacobian(&y)

	for range maxNonceIterations {
		nonce, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		k := &nonce.Key

		var r, rAdapted btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(k, &r)
		btcec.ScalarMultNonConst(k, &y, &rAdapted)
		if isInfinity(&rAdapted) {
			nonce.Zero()
			continue
		}
		rAdapted.ToAffine()
		rx := xScalar(&rAdapted)
		if rx.IsZero() {
			nonce.Zero()
			continue
		}

		kInv := new(btcec.ModNScalar).InverseValNonConst(k)
		s := new(btcec.ModNScalar).Mul2(rx, &sk.Key).Add(m).Mul(kInv)
		if s.IsZero() {
			nonce.Zero()
			continue
		}

		proof, err := proveDLEQ(k, &r, &y, &rAdapted)
		nonce.Zero()
		if err != nil {
			return nil, err
		}

		sb, cb, zb := s.Bytes(), proof.c.Bytes(), proof.z.Bytes()
		ps := make(PreSignature, 0, ecdsaPreSigLen)
		ps = append(ps, pointBytes(&r)...)
		ps = append(ps, pointBytes(&rAdapted)...)
		ps = append(ps, sb[:]...)
		ps = append(ps, cb[:]...)
		ps = append(ps, zb[:]...)
		return ps, nil
	}
	return nil, ErrDegenerateNonce
}

func (ECDSA) PreVerify(vk *btcec.PublicKey, msg []byte, ap *btcec.PublicKey, ps PreSignature) bool {
	if vk == nil || ap == nil || len(msg) != 32 {
		return false
	}
	pre, err := parseECDSAPreSig(ps)
	if err != nil {
		return false
	}

	var y btcec.JacobianPoint
	ap.AsJacobian(&y)
	if !verifyDLEQ(&pre.proof, &pre.r, &y, &pre.rAdapted) {
		return false
	}

	rx := xScalar(&pre.rAdapted)
	if rx.IsZero() {
		return false
	}

	// R == (m/s')·G + (r/s')·X
	sInv := new(btcec.ModNScalar).InverseValNonConst(&pre.s)
	u1 := new(btcec.ModNScalar).Mul2(messageScalar(msg), sInv)
	u2 := new(btcec.ModNScalar).Mul2(rx, sInv)

	var x, u1G, u2X, sum btcec.JacobianPoint
	vk.AsJacobian(&x)
	btcec.ScalarBaseMultNonConst(u1, &u1G)
	btcec.ScalarMultNonConst(u2, &x, &u2X)
	btcec.AddNonConst(&u1G, &u2X, &sum)
	if isInfinity(&sum) {
		return false
	}
	sum.ToAffine()
	expected := pre.r
	expected.ToAffine()
	return sum.X.Equals(&expected.X) && sum.Y.Equals(&expected.Y)
}

func (ECDSA) Adapt(ps PreSignature, secret *btcec.ModNScalar) (Signature, error) {
	pre, err := parseECDSAPreSig(ps)
	if err != nil {
		return nil, err
	}
	if secret.IsZero() {
		return nil, ErrDegenerateAdaptation
	}

	rx := xScalar(&pre.rAdapted)
	s := new(btcec.ModNScalar).InverseValNonConst(secret).Mul(&pre.s)
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	if rx.IsZero() || s.IsZero() {
		return nil, ErrDegenerateAdaptation
	}
	return ecdsa.NewSignature(rx, s).Serialize(), nil
}

func (ECDSA) Extract(sig Signature, ps PreSignature, ap *btcec.PublicKey) (*btcec.ModNScalar, error) {
	pre, err := parseECDSAPreSig(ps)
	if err != nil {
		return nil, err
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return nil, ErrMalformedSignature
	}
	r, s := parsed.R(), parsed.S()
	if !r.Equals(xScalar(&pre.rAdapted)) {
		return nil, ErrSignatureMismatch
	}

	// s = ±s'·y⁻¹, so y = ±s'·s⁻¹
	secret := new(btcec.ModNScalar).InverseValNonConst(&s).Mul(&pre.s)
	if matchesPoint(secret, ap) {
		return secret, nil
	}
	secret.Negate()
	if matchesPoint(secret, ap) {
		return secret, nil
	}
	return nil, ErrSecretMismatch
}

func (ECDSA) Sign(sk *btcec.PrivateKey, msg []byte) (Signature, error) {
	if err := checkMessage(msg); err != nil {
		return nil, err
	}
	return ecdsa.Sign(sk, msg).Serialize(), nil
}

func (ECDSA) Verify(vk *btcec.PublicKey, msg []byte, sig Signature) bool {
	if vk == nil || len(msg) != 32 {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(msg, vk)
}

type ecdsaPreSig struct {
	r        btcec.JacobianPoint
	rAdapted btcec.JacobianPoint
	s        btcec.ModNScalar
	proof    dleqProof
}

func parseECDSAPreSig(ps PreSignature) (*ecdsaPreSig, error) {
	if len(ps) != ecdsaPreSigLen {
		return nil, ErrMalformedPreSig
	}
	r, err := btcec.ParsePubKey(ps[0:33])
	if err != nil {
		return nil, ErrMalformedPreSig
	}
	rAdapted, err := btcec.ParsePubKey(ps[33:66])
	if err != nil {
		return nil, ErrMalformedPreSig
	}
	s, ok := parseScalar(ps[66:98])
	if !ok || s.IsZero() {
		return nil, ErrMalformedPreSig
	}
	c, ok := parseScalar(ps[98:130])
	if !ok {
		return nil, ErrMalformedPreSig
	}
	z, ok := parseScalar(ps[130:162])
	if !ok {
		return nil, ErrMalformedPreSig
	}

	pre := &ecdsaPreSig{}
	r.AsJacobian(&pre.r)
	rAdapted.AsJacobian(&pre.rAdapted)
	pre.s.Set(s)
	pre.proof.c.Set(c)
	pre.proof.z.Set(z)
	return pre, nil
}

// xScalar reduces the affine x coordinate of p modulo the group order.
func xScalar(p *btcec.JacobianPoint) *btcec.ModNScalar {
	cp := *p
	cp.ToAffine()
	xb := cp.X.Bytes()
	var rx btcec.ModNScalar
	rx.SetBytes(xb)
	return &rx
}

func messageScalar(msg []byte) *btcec.ModNScalar {
	var m btcec.ModNScalar
	m.SetByteSlice(msg)
	return &m
}

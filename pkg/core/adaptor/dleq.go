package adaptor

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var dleqTag = []byte("DLC/ecdsa-adaptor/dleq")

// dleqProof is a Chaum-Pedersen proof that log_G(R) == log_Y(R').
type dleqProof struct {
	c btcec.ModNScalar
	z btcec.ModNScalar
}

func proveDLEQ(k *btcec.ModNScalar, r, y, rAdapted *btcec.JacobianPoint) (*dleqProof, error) {
	nonce, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	defer nonce.Zero()
	a := &nonce.Key

	var a1, a2 btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(a, &a1)
	btcec.ScalarMultNonConst(a, y, &a2)

	proof := &dleqProof{}
	proof.c.Set(dleqChallenge(r, y, rAdapted, &a1, &a2))
	proof.z.Mul2(&proof.c, k).Add(a)
	return proof, nil
}

func verifyDLEQ(proof *dleqProof, r, y, rAdapted *btcec.JacobianPoint) bool {
	negC := new(btcec.ModNScalar).NegateVal(&proof.c)

	// A1 = zG - cR
	var zG, cR, a1 btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&proof.z, &zG)
	btcec.ScalarMultNonConst(negC, r, &cR)
	btcec.AddNonConst(&zG, &cR, &a1)

	// A2 = zY - cR'
	var zY, cR2, a2 btcec.JacobianPoint
	btcec.ScalarMultNonConst(&proof.z, y, &zY)
	btcec.ScalarMultNonConst(negC, rAdapted, &cR2)
	btcec.AddNonConst(&zY, &cR2, &a2)

	if isInfinity(&a1) || isInfinity(&a2) {
		return false
	}
	return dleqChallenge(r, y, rAdapted, &a1, &a2).Equals(&proof.c)
}

func dleqChallenge(points ...*btcec.JacobianPoint) *btcec.ModNScalar {
	msgs := make([][]byte, 0, len(points))
	for _, p := range points {
		cp := *p
		msgs = append(msgs, pointBytes(&cp))
	}
	h := chainhash.TaggedHash(dleqTag, msgs...)
	var c btcec.ModNScalar
	c.SetByteSlice(h[:])
	return &c
}

package testabilities

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// OracleKeys holds a fresh oracle key pair and a one-time nonce.
type OracleKeys struct {
	Key   *btcec.PrivateKey
	Nonce *btcec.PrivateKey
}

func (k OracleKeys) PublicKey() *btcec.PublicKey   { return k.Key.PubKey() }
func (k OracleKeys) PublicNonce() *btcec.PublicKey { return k.Nonce.PubKey() }

// GivenOracleKeys generates random oracle keys.
func GivenOracleKeys(t testing.TB) OracleKeys {
	t.Helper()
	return OracleKeys{
		Key:   GivenPrivateKey(t),
		Nonce: GivenPrivateKey(t),
	}
}

// GivenPrivateKey generates a random secp256k1 private key.
func GivenPrivateKey(t testing.TB) *btcec.PrivateKey {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

// PointOf returns s·G.
func PointOf(s *btcec.ModNScalar) *btcec.PublicKey {
	var p btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(s, &p)
	p.ToAffine()
	return btcec.NewPublicKey(&p.X, &p.Y)
}

// AddPoints returns a + b.
func AddPoints(a, b *btcec.PublicKey) *btcec.PublicKey {
	var ja, jb, sum btcec.JacobianPoint
	a.AsJacobian(&ja)
	b.AsJacobian(&jb)
	btcec.AddNonConst(&ja, &jb, &sum)
	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y)
}

package testabilities

import (
	"testing"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// OracleFixture carries a consistent set of oracle values for tests.
type OracleFixture struct {
	Key         *btcec.PrivateKey
	Nonce       *btcec.PrivateKey
	Outcome     uint32
	AttestedAt  time.Time
	secretValue btcec.ModNScalar
}

// Announcement returns an announcement already past its attestation time.
func (f OracleFixture) Announcement() oracle.Announcement {
	return oracle.Announcement{
		PublicKey:           f.Key.PubKey(),
		PublicNonce:         f.Nonce.PubKey(),
		NextAttestationTime: f.AttestedAt,
	}
}

// FutureAnnouncement returns an announcement whose attestation time lies an hour ahead.
func (f OracleFixture) FutureAnnouncement() oracle.Announcement {
	ann := f.Announcement()
	ann.NextAttestationTime = time.Now().Add(time.Hour)
	return ann
}

// Attestation returns an attestation of the fixture outcome.
func (f OracleFixture) Attestation() oracle.Attestation {
	secret := f.secretValue
	return oracle.Attestation{Outcome: f.Outcome, Secret: &secret}
}

// GivenOracleFixture generates fresh oracle keys with a fixed outcome.
func GivenOracleFixture(t *testing.T) OracleFixture {
	t.Helper()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	nonce, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	f := OracleFixture{
		Key:        key,
		Nonce:      nonce,
		Outcome:    7,
		AttestedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.secretValue.Set(&nonce.Key)
	return f
}

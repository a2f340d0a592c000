package oracle_test

import (
	"context"
	"testing"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/testabilities"
	"github.com/stretchr/testify/require"
)

func TestRandIntOracle_AttestationMatchesAnnouncement(t *testing.T) {
	for _, name := range crypto.StrategyNames() {
		t.Run(name, func(t *testing.T) {
			// given:
			strategy, err := crypto.StrategyByName(name)
			require.NoError(t, err)
			space := testabilities.GivenSpace(t, 5)
			o, err := oracle.NewRandIntOracle(space, oracle.WithStrategy(strategy))
			require.NoError(t, err)

			// when:
			announcement, err := o.EventAnnouncement(t.Context(), testabilities.DefaultEventID)
			require.NoError(t, err)
			attestation, err := o.EventAttestation(t.Context(), testabilities.DefaultEventID)
			require.NoError(t, err)

			// then:
			require.True(t, space.Contains(outcome.Outcome(attestation.Outcome)))

			anticipator, err := strategy.NewAnticipator(announcement.PublicKey, announcement.PublicNonce, space)
			require.NoError(t, err)
			point, err := anticipator.AnticipationPoint(outcome.Outcome(attestation.Outcome))
			require.NoError(t, err)
			require.True(t, point.IsEqual(testabilities.PointOf(attestation.Secret)))
		})
	}
}

func TestRandIntOracle_FixedOutcome(t *testing.T) {
	// given:
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, 5), oracle.WithOutcome(17))
	require.NoError(t, err)

	// when:
	attestation, err := o.EventAttestation(t.Context(), testabilities.DefaultEventID)

	// then:
	require.NoError(t, err)
	require.EqualValues(t, 17, attestation.Outcome)
}

func TestRandIntOracle_RejectsFixedOutcomeOutsideSpace(t *testing.T) {
	// when:
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, 5), oracle.WithOutcome(32))

	// then:
	require.ErrorIs(t, err, crypto.ErrOutcomeOutOfRange)
	require.Nil(t, o)
}

func TestRandIntOracle_AnnouncementIsStablePerEvent(t *testing.T) {
	// given:
	key := testabilities.GivenPrivateKey(t)
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, 5), oracle.WithPrivateKey(key))
	require.NoError(t, err)

	// when:
	first, err := o.EventAnnouncement(t.Context(), "event-a")
	require.NoError(t, err)
	again, err := o.EventAnnouncement(t.Context(), "event-a")
	require.NoError(t, err)
	other, err := o.EventAnnouncement(t.Context(), "event-b")
	require.NoError(t, err)
	publicKey, err := o.PublicKey(t.Context())
	require.NoError(t, err)

	// then:
	require.True(t, first.PublicNonce.IsEqual(again.PublicNonce))
	require.False(t, first.PublicNonce.IsEqual(other.PublicNonce))
	require.True(t, first.PublicKey.IsEqual(key.PubKey()))
	require.True(t, publicKey.IsEqual(key.PubKey()))
}

func TestRandIntOracle_AttestationWaitsForAttestationTime(t *testing.T) {
	// given:
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, 5), oracle.WithAttestationDelay(time.Hour))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	// when:
	_, err = o.EventAttestation(ctx, testabilities.DefaultEventID)

	// then:
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRandIntOracle_RejectsEmptyEventID(t *testing.T) {
	// given:
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, 5))
	require.NoError(t, err)

	// when:
	_, err = o.EventAnnouncement(t.Context(), "")

	// then:
	require.ErrorIs(t, err, oracle.ErrUnknownEvent)
}

package controller_test

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/cet"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/computation"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/controller"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/storage"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/testabilities"
	"github.com/stretchr/testify/require"
)

type parties struct {
	offerer  *controller.Controller
	accepter *controller.Controller
}

func (p parties) both() []*controller.Controller {
	return []*controller.Controller{p.offerer, p.accepter}
}

func givenOracle(t *testing.T, strategy crypto.Strategy, opts ...oracle.RandIntOption) *oracle.RandIntOracle {
	t.Helper()
	o, err := oracle.NewRandIntOracle(testabilities.GivenSpace(t, testabilities.DefaultNbDigits),
		append([]oracle.RandIntOption{oracle.WithStrategy(strategy)}, opts...)...)
	require.NoError(t, err)
	return o
}

func givenParties(t *testing.T, o oracle.Oracle, opts ...controller.Option) parties {
	t.Helper()
	offerer, err := controller.New(controller.Offerer, o, opts...)
	require.NoError(t, err)
	accepter, err := controller.New(controller.Accepter, o, opts...)
	require.NoError(t, err)
	return parties{offerer: offerer, accepter: accepter}
}

func givenLoadedParties(t *testing.T, o oracle.Oracle, input contract.ContractInput, opts ...controller.Option) parties {
	t.Helper()
	p := givenParties(t, o, opts...)
	path := testabilities.WriteContractFile(t, input)
	for _, c := range p.both() {
		require.NoError(t, c.LoadInput(path))
	}
	return p
}

func exchange(t *testing.T, from, to *controller.Controller) {
	t.Helper()
	vk, err := from.ShareVerificationKey()
	require.NoError(t, err)
	adaptors, err := from.ShareAdaptors()
	require.NoError(t, err)
	require.NoError(t, to.SaveCPVerificationKey(vk))
	require.NoError(t, to.SaveCPAdaptors(adaptors))
}

func initAndExchange(t *testing.T, p parties) {
	t.Helper()
	for _, c := range p.both() {
		require.NoError(t, c.InitStorage(t.Context()))
	}
	exchange(t, p.offerer, p.accepter)
	exchange(t, p.accepter, p.offerer)
}

func verifyAndAttest(t *testing.T, p parties) {
	t.Helper()
	for _, c := range p.both() {
		ok, err := c.VerifyCPAdaptors(t.Context())
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, c.UpdateCPAdaptors(t.Context()))
		require.NoError(t, c.WaitAttestation(t.Context()))
	}
}

func TestController_SettlesFixedOutcome(t *testing.T) {
	for _, schemeName := range adaptor.SchemeNames() {
		for _, strategyName := range crypto.StrategyNames() {
			t.Run(schemeName+" "+strategyName, func(t *testing.T) {
				// given:
				scheme, err := adaptor.SchemeByName(schemeName)
				require.NoError(t, err)
				strategy, err := crypto.StrategyByName(strategyName)
				require.NoError(t, err)

				o := givenOracle(t, strategy, oracle.WithOutcome(17))
				p := givenLoadedParties(t, o, testabilities.GivenContractInput(testabilities.DefaultNbDigits),
					controller.WithScheme(scheme),
					controller.WithStrategy(strategy),
				)
				initAndExchange(t, p)
				verifyAndAttest(t, p)

				expectedPayload, err := cet.NewTxBuilder().Payload(100, 200)
				require.NoError(t, err)

				for _, c := range p.both() {
					// when:
					tx, err := c.FinalizeTx()

					// then:
					require.NoError(t, err)
					require.Equal(t, controller.Finalized, c.State())
					require.Equal(t, expectedPayload, tx.Payload)

					for _, verifier := range p.both() {
						address, err := verifier.FundAddress()
						require.NoError(t, err)
						require.True(t, address.Verify(scheme, tx))
					}

					payout, err := c.Payout()
					require.NoError(t, err)
					require.EqualValues(t, 17, payout.Outcome)
					require.Equal(t, "Offerer gets 100 sats and Accepter gets 100 sats", payout.String())
				}
			})
		}
	}
}

func TestController_SettlesRandomOutcome(t *testing.T) {
	// given:
	o := givenOracle(t, crypto.Basis{})
	input := testabilities.GivenContractInput(testabilities.DefaultNbDigits,
		testabilities.WithIntervals(
			testabilities.Interval(0, 0, 10, 0),
			testabilities.Interval(10, 0, 20, 200),
			testabilities.Interval(20, 200, 31, 200),
		),
	)
	p := givenLoadedParties(t, o, input, controller.WithExecutor(computation.Serial{}))
	initAndExchange(t, p)
	verifyAndAttest(t, p)

	// when:
	offererTx, err := p.offerer.FinalizeTx()
	require.NoError(t, err)
	accepterTx, err := p.accepter.FinalizeTx()
	require.NoError(t, err)

	// then:
	require.Equal(t, offererTx.Payload, accepterTx.Payload)

	offererPayout, err := p.offerer.Payout()
	require.NoError(t, err)
	accepterPayout, err := p.accepter.Payout()
	require.NoError(t, err)
	require.Equal(t, offererPayout.Outcome, accepterPayout.Outcome)
	require.Equal(t, uint64(200), offererPayout.Offerer+offererPayout.Accepter)
	require.Equal(t, offererPayout.Offerer, offererPayout.Own())
	require.Equal(t, accepterPayout.Accepter, accepterPayout.Own())

	parsed := testabilities.GivenParsedContract(t, input)
	expected, ok := parsed.Payout(offererPayout.Outcome)
	require.True(t, ok)
	require.Equal(t, expected, offererPayout.Accepter)
}

func TestController_RejectsOutOfOrderCalls(t *testing.T) {
	tests := map[string]struct {
		call func(ctx context.Context, c *controller.Controller) error
	}{
		"init storage before contract": {
			call: func(ctx context.Context, c *controller.Controller) error { return c.InitStorage(ctx) },
		},
		"share adaptors before storage": {
			call: func(_ context.Context, c *controller.Controller) error {
				_, err := c.ShareAdaptors()
				return err
			},
		},
		"share key before storage": {
			call: func(_ context.Context, c *controller.Controller) error {
				_, err := c.ShareVerificationKey()
				return err
			},
		},
		"save counterparty key before storage": {
			call: func(_ context.Context, c *controller.Controller) error {
				return c.SaveCPVerificationKey(testabilities.GivenPrivateKey(t).PubKey())
			},
		},
		"verify before exchange": {
			call: func(ctx context.Context, c *controller.Controller) error {
				_, err := c.VerifyCPAdaptors(ctx)
				return err
			},
		},
		"wait attestation before exchange": {
			call: func(ctx context.Context, c *controller.Controller) error { return c.WaitAttestation(ctx) },
		},
		"finalize before attestation": {
			call: func(_ context.Context, c *controller.Controller) error {
				_, err := c.FinalizeTx()
				return err
			},
		},
		"fund address before exchange": {
			call: func(_ context.Context, c *controller.Controller) error {
				_, err := c.FundAddress()
				return err
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			c, err := controller.New(controller.Offerer, givenOracle(t, crypto.Basis{}))
			require.NoError(t, err)

			// when:
			err = tc.call(t.Context(), c)

			// then:
			require.ErrorIs(t, err, controller.ErrInvalidState)
			var stateErr *controller.StateError
			require.ErrorAs(t, err, &stateErr)
			require.Equal(t, controller.Created, stateErr.Actual)
			require.Equal(t, controller.Created, c.State())
		})
	}
}

func TestController_LoadInputFailureKeepsState(t *testing.T) {
	tests := map[string]struct {
		path        func(t *testing.T) string
		expectedErr error
	}{
		"fee rate too high": {
			path: func(t *testing.T) string {
				return testabilities.WriteContractFile(t, testabilities.GivenContractInput(5, testabilities.WithFeeRate(contract.MaxFeeRate+1)))
			},
			expectedErr: contract.ErrTooHighFeeRate,
		},
		"payout above collateral": {
			path: func(t *testing.T) string {
				return testabilities.WriteContractFile(t, testabilities.GivenContractInput(5,
					testabilities.WithIntervals(testabilities.Interval(0, 0, 31, 201))))
			},
			expectedErr: contract.ErrInvalidPayout,
		},
		"missing file": {
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.json")
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			c, err := controller.New(controller.Accepter, givenOracle(t, crypto.Basis{}))
			require.NoError(t, err)

			// when:
			err = c.LoadInput(tc.path(t))

			// then:
			require.Error(t, err)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				var validationErr *contract.ValidationError
				require.ErrorAs(t, err, &validationErr)
			}
			require.Equal(t, controller.Created, c.State())
		})
	}
}

func TestController_ReloadFailureKeepsLoadedContract(t *testing.T) {
	// given:
	o := givenOracle(t, crypto.Basis{}, oracle.WithOutcome(3))
	p := givenLoadedParties(t, o, testabilities.GivenContractInput(5))
	broken := testabilities.GivenContractInput(5, testabilities.WithIntervals())

	// when:
	err := p.offerer.LoadContract(broken)

	// then:
	require.ErrorIs(t, err, contract.ErrMissingIntervals)
	require.Equal(t, controller.ContractLoaded, p.offerer.State())

	initAndExchange(t, p)
	verifyAndAttest(t, p)
	_, err = p.offerer.FinalizeTx()
	require.NoError(t, err)
}

func TestController_ConfiguredSpaceMustMatchContract(t *testing.T) {
	// given:
	c, err := controller.New(controller.Offerer, givenOracle(t, crypto.Basis{}),
		controller.WithSpace(testabilities.GivenSpace(t, 6)))
	require.NoError(t, err)

	// when:
	err = c.LoadContract(testabilities.GivenContractInput(5))

	// then:
	require.ErrorIs(t, err, contract.ErrOutcomeRangeMismatch)
	require.Equal(t, controller.Created, c.State())
}

func TestController_StopsOnInvalidCounterpartyAdaptors(t *testing.T) {
	// given:
	o := givenOracle(t, crypto.Basis{}, oracle.WithOutcome(5))
	p := givenLoadedParties(t, o, testabilities.GivenContractInput(5))
	for _, c := range p.both() {
		require.NoError(t, c.InitStorage(t.Context()))
	}
	exchange(t, p.accepter, p.offerer)

	adaptors, err := p.offerer.ShareAdaptors()
	require.NoError(t, err)
	adaptors[5].PreSignature = adaptors[6].PreSignature
	vk, err := p.offerer.ShareVerificationKey()
	require.NoError(t, err)
	require.NoError(t, p.accepter.SaveCPVerificationKey(vk))
	require.NoError(t, p.accepter.SaveCPAdaptors(adaptors))

	// when:
	ok, err := p.accepter.VerifyCPAdaptors(t.Context())

	// then:
	require.NoError(t, err)
	require.False(t, ok)
	require.ErrorIs(t, p.accepter.UpdateCPAdaptors(t.Context()), controller.ErrNotVerified)
	require.ErrorIs(t, p.accepter.WaitAttestation(t.Context()), controller.ErrNotVerified)
	require.Equal(t, controller.KeysExchanged, p.accepter.State())
}

func TestController_RejectsMismatchedOracleKey(t *testing.T) {
	// given:
	o := givenOracle(t, crypto.Basis{})
	other := testabilities.GivenPrivateKey(t).PubKey()
	input := testabilities.GivenContractInput(5,
		testabilities.WithOraclePublicKey(hex.EncodeToString(other.SerializeCompressed())))
	p := givenLoadedParties(t, o, input)

	// when:
	err := p.offerer.InitStorage(t.Context())

	// then:
	require.ErrorIs(t, err, controller.ErrOracleKeyMismatch)
	require.Equal(t, controller.ContractLoaded, p.offerer.State())
}

func TestController_AcceptsMatchingOracleKey(t *testing.T) {
	// given:
	key := testabilities.GivenPrivateKey(t)
	o := givenOracle(t, crypto.Basis{}, oracle.WithPrivateKey(key))
	input := testabilities.GivenContractInput(5,
		testabilities.WithOraclePublicKey(hex.EncodeToString(key.PubKey().SerializeCompressed())))
	p := givenLoadedParties(t, o, input)

	// when:
	err := p.offerer.InitStorage(t.Context())

	// then:
	require.NoError(t, err)
	require.Equal(t, controller.StorageInitialized, p.offerer.State())
}

type lyingOracle struct {
	oracle.Oracle
	secret *testabilities.OracleKeys
}

func (l lyingOracle) EventAttestation(ctx context.Context, eventID string) (oracle.Attestation, error) {
	att, err := l.Oracle.EventAttestation(ctx, eventID)
	if err != nil {
		return oracle.Attestation{}, err
	}
	att.Secret = &l.secret.Key.Key
	return att, nil
}

func TestController_RejectsAttestationNotMatchingAnticipationPoint(t *testing.T) {
	// given:
	keys := testabilities.GivenOracleKeys(t)
	o := lyingOracle{Oracle: givenOracle(t, crypto.Basis{}, oracle.WithOutcome(9)), secret: &keys}
	p := givenLoadedParties(t, o, testabilities.GivenContractInput(5))
	initAndExchange(t, p)
	for _, c := range p.both() {
		ok, err := c.VerifyCPAdaptors(t.Context())
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, c.UpdateCPAdaptors(t.Context()))
	}

	// when:
	err := p.offerer.WaitAttestation(t.Context())

	// then:
	require.ErrorIs(t, err, controller.ErrAttestationMismatch)
	require.Equal(t, controller.KeysExchanged, p.offerer.State())
}

func TestController_SnapshotsStorage(t *testing.T) {
	// given:
	store, err := storage.NewSQLiteSnapshotStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	o := givenOracle(t, crypto.Basis{}, oracle.WithOutcome(1))
	p := givenLoadedParties(t, o, testabilities.GivenContractInput(5), controller.WithSnapshotStore(store))
	initAndExchange(t, p)

	// when:
	verifyAndAttest(t, p)

	// then:
	space := testabilities.GivenSpace(t, 5)
	loaded, err := store.Load(t.Context(), testabilities.DefaultEventID+"/offerer", space)
	require.NoError(t, err)
	require.Equal(t, 32, loaded.Len())

	elements, err := p.offerer.Elements()
	require.NoError(t, err)
	for i, el := range loaded.Elements() {
		require.Equal(t, elements[i].Payload, el.Payload)
		require.Equal(t, elements[i].OwnPreSignature, el.OwnPreSignature)
		require.Equal(t, elements[i].CounterpartyPreSignature, el.CounterpartyPreSignature)
		require.NotNil(t, el.CounterpartyPreSignature)
	}

	cp, ok := loaded.GetElement(outcome.Outcome(1))
	require.True(t, ok)
	require.NotEmpty(t, cp.CounterpartyPreSignature)
}

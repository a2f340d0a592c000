package cet_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/cet"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/bsv-blockchain/go-sdk/overlay"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	testvectors "github.com/bsv-blockchain/universal-test-vectors/pkg/testabilities"
	"github.com/stretchr/testify/require"
)

const (
	offerScriptHex  = "51"
	acceptScriptHex = "5151"
)

func givenFundingOutpoint(t *testing.T) overlay.Outpoint {
	t.Helper()

	fundingTx := testvectors.GivenTX().
		WithInput(1000).
		WithP2PKHOutput(999).
		TX()

	return overlay.Outpoint{Txid: *fundingTx.TxID(), OutputIndex: 0}
}

func givenBuilder(t *testing.T) (*cet.TxBuilder, overlay.Outpoint) {
	t.Helper()

	outpoint := givenFundingOutpoint(t)
	builder, err := cet.NewTxBuilderFromSettlement(contract.Settlement{
		FundingOutpoint:    outpoint.String(),
		OfferPayoutScript:  offerScriptHex,
		AcceptPayoutScript: acceptScriptHex,
	})
	require.NoError(t, err)
	return builder, outpoint
}

func TestTxBuilder_Payload(t *testing.T) {
	tests := map[string]struct {
		payout          uint64
		total           uint64
		expectedOutputs []uint64
		expectedScripts []string
	}{
		"split between parties": {
			payout:          100,
			total:           200,
			expectedOutputs: []uint64{100, 100},
			expectedScripts: []string{offerScriptHex, acceptScriptHex},
		},
		"accepter takes everything": {
			payout:          200,
			total:           200,
			expectedOutputs: []uint64{200},
			expectedScripts: []string{acceptScriptHex},
		},
		"offerer takes everything": {
			payout:          0,
			total:           200,
			expectedOutputs: []uint64{200},
			expectedScripts: []string{offerScriptHex},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			builder, outpoint := givenBuilder(t)

			// when:
			payload, err := builder.Payload(tc.payout, tc.total)

			// then:
			require.NoError(t, err)

			tx, err := transaction.NewTransactionFromBytes(payload)
			require.NoError(t, err)
			require.Len(t, tx.Inputs, 1)
			require.Equal(t, outpoint.Txid, *tx.Inputs[0].SourceTXID)
			require.Equal(t, outpoint.OutputIndex, tx.Inputs[0].SourceTxOutIndex)

			require.Len(t, tx.Outputs, len(tc.expectedOutputs))
			for i, sats := range tc.expectedOutputs {
				require.Equal(t, sats, tx.Outputs[i].Satoshis)
				require.Equal(t, tc.expectedScripts[i], hex.EncodeToString(*tx.Outputs[i].LockingScript))
			}
		})
	}
}

func TestTxBuilder_PayloadRejectsPayoutAboveCollateral(t *testing.T) {
	// given:
	builder, _ := givenBuilder(t)

	// when:
	payload, err := builder.Payload(201, 200)

	// then:
	require.ErrorIs(t, err, cet.ErrPayoutExceedsCollateral)
	require.Nil(t, payload)
}

func TestTxBuilder_PayloadsDifferPerPayout(t *testing.T) {
	// given:
	builder, _ := givenBuilder(t)

	// when:
	first, err := builder.Payload(10, 200)
	require.NoError(t, err)
	second, err := builder.Payload(11, 200)
	require.NoError(t, err)
	again, err := builder.Payload(10, 200)
	require.NoError(t, err)

	// then:
	require.NotEqual(t, first, second)
	require.Equal(t, first, again)
}

func TestNewTxBuilderFromSettlement(t *testing.T) {
	tests := map[string]struct {
		settlement  contract.Settlement
		expectedErr error
	}{
		"empty settlement uses defaults": {
			settlement: contract.Settlement{},
		},
		"invalid outpoint": {
			settlement:  contract.Settlement{FundingOutpoint: "not-an-outpoint"},
			expectedErr: cet.ErrInvalidFundingOutpoint,
		},
		"invalid offer script": {
			settlement:  contract.Settlement{OfferPayoutScript: "zz"},
			expectedErr: cet.ErrInvalidPayoutScript,
		},
		"invalid accept script": {
			settlement:  contract.Settlement{AcceptPayoutScript: "0"},
			expectedErr: cet.ErrInvalidPayoutScript,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// when:
			builder, err := cet.NewTxBuilderFromSettlement(tc.settlement)

			// then:
			require.ErrorIs(t, err, tc.expectedErr)
			if tc.expectedErr == nil {
				require.Equal(t, &script.Script{}, builder.OfferPayoutScript)
				require.Equal(t, &script.Script{}, builder.AcceptPayoutScript)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	// given:
	payload := []byte("settlement")

	// when:
	msg := cet.Message(payload)

	// then:
	require.Len(t, msg, 32)
	require.Equal(t, msg, cet.Message(bytes.Clone(payload)))
	require.NotEqual(t, msg, cet.Message([]byte("settlement!")))
}

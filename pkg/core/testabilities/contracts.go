package testabilities

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/stretchr/testify/require"
)

// Default contract parameters used across tests.
const (
	DefaultNbDigits         = 5
	DefaultOfferCollateral  = 100
	DefaultAcceptCollateral = 100
	DefaultFeeRate          = 2
	DefaultEventID          = "btcusd-2025-01-01"
)

// ContractOption customizes a contract input fixture.
type ContractOption func(*contract.ContractInput)

// WithIntervals replaces the payout intervals of the fixture.
func WithIntervals(intervals ...contract.PayoutInterval) ContractOption {
	return func(c *contract.ContractInput) {
		c.ContractInfo.ContractDescriptor.PayoutIntervals = intervals
	}
}

// WithCollateral sets both parties' collateral.
func WithCollateral(offer, accept uint64) ContractOption {
	return func(c *contract.ContractInput) {
		c.OfferCollateral = offer
		c.AcceptCollateral = accept
	}
}

// WithFeeRate sets the fee rate of the fixture.
func WithFeeRate(rate uint64) ContractOption {
	return func(c *contract.ContractInput) {
		c.FeeRate = rate
	}
}

// WithOracleNbDigits overrides the number of digits the contract declares.
func WithOracleNbDigits(nb uint8) ContractOption {
	return func(c *contract.ContractInput) {
		c.ContractInfo.Oracle.NbDigits = nb
	}
}

// WithOraclePublicKey pins the oracle public key the contract expects.
func WithOraclePublicKey(hex string) ContractOption {
	return func(c *contract.ContractInput) {
		c.ContractInfo.Oracle.PublicKey = hex
	}
}

// Interval builds a two point payout interval.
func Interval(fromOutcome uint32, fromPayout uint64, toOutcome uint32, toPayout uint64) contract.PayoutInterval {
	return contract.PayoutInterval{PayoutPoints: []contract.PayoutPoint{
		{EventOutcome: fromOutcome, OutcomePayout: fromPayout},
		{EventOutcome: toOutcome, OutcomePayout: toPayout},
	}}
}

// GivenContractInput returns a valid contract over a space of nbDigits digits
// paying the accepter a flat 100 sats out of 200, unless options say otherwise.
func GivenContractInput(nbDigits uint8, opts ...ContractOption) contract.ContractInput {
	last := uint32((uint64(1) << nbDigits) - 1)
	input := contract.ContractInput{
		OfferCollateral:  DefaultOfferCollateral,
		AcceptCollateral: DefaultAcceptCollateral,
		FeeRate:          DefaultFeeRate,
		ContractInfo: contract.ContractInfo{
			ContractDescriptor: contract.ContractDescriptor{
				PayoutIntervals: []contract.PayoutInterval{Interval(0, 100, last, 100)},
			},
			Oracle: contract.OracleInput{
				EventID:  DefaultEventID,
				NbDigits: nbDigits,
			},
		},
	}
	for _, o := range opts {
		o(&input)
	}
	return input
}

// GivenSpace returns the outcome space for nbDigits or fails the test.
func GivenSpace(t testing.TB, nbDigits uint8) outcome.Space {
	t.Helper()
	space, err := outcome.NewSpace(nbDigits)
	require.NoError(t, err)
	return space
}

// GivenParsedContract validates and flattens the input over its declared space.
func GivenParsedContract(t testing.TB, input contract.ContractInput) contract.ParsedContract {
	t.Helper()
	parsed, err := contract.ParseContractInput(input, GivenSpace(t, input.ContractInfo.Oracle.NbDigits))
	require.NoError(t, err)
	return parsed
}

// WriteContractFile stores the input as JSON in a temporary directory and returns its path.
func WriteContractFile(t testing.TB, input contract.ContractInput) string {
	t.Helper()

	bb, err := json.MarshalIndent(input, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contract.json")
	require.NoError(t, os.WriteFile(path, bb, 0600))
	return path
}

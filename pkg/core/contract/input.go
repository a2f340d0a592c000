package contract

// MaxFeeRate is the highest accepted fee rate in sats per vbyte (25×250).
const MaxFeeRate = 25 * 250

// ContractInput is the raw structured contract offer as read from disk.
type ContractInput struct {
	OfferCollateral  uint64       `json:"offerCollateral"`
	AcceptCollateral uint64       `json:"acceptCollateral"`
	FeeRate          uint64       `json:"feeRate"`
	ContractInfo     ContractInfo `json:"contractInfo"`
	Settlement       Settlement   `json:"settlement"`
}

// TotalCollateral returns the sum of both parties' collateral.
func (c ContractInput) TotalCollateral() uint64 {
	return c.OfferCollateral + c.AcceptCollateral
}

type ContractInfo struct {
	ContractDescriptor ContractDescriptor `json:"contractDescriptor"`
	Oracle             OracleInput        `json:"oracle"`
}

// ContractDescriptor is the payout curve expressed as ordered intervals.
type ContractDescriptor struct {
	PayoutIntervals []PayoutInterval `json:"payoutIntervals"`
}

// PayoutInterval is a segment of the payout curve. A well formed interval
// carries exactly two points.
type PayoutInterval struct {
	PayoutPoints []PayoutPoint `json:"payoutPoints"`
}

// PayoutPoint binds an outcome to the accepter's payout in sats.
type PayoutPoint struct {
	EventOutcome  uint32 `json:"eventOutcome"`
	OutcomePayout uint64 `json:"outcomePayout"`
}

// OracleInput names the oracle and event the contract settles on.
// PublicKey is optional; when set, the announced oracle key must match it.
type OracleInput struct {
	PublicKey string `json:"publicKey,omitempty"`
	EventID   string `json:"eventId"`
	NbDigits  uint8  `json:"nbDigits"`
}

// Settlement fixes the parts of the settlement transaction both parties
// must agree on so that they build identical payloads.
type Settlement struct {
	FundingOutpoint    string `json:"fundingOutpoint,omitempty"`
	OfferPayoutScript  string `json:"offerPayoutScript,omitempty"`
	AcceptPayoutScript string `json:"acceptPayoutScript,omitempty"`
}

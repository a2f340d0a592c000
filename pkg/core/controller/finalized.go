package controller

import (
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/cet"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

// FinalizedTx is the settlement payload with both parties' signatures,
// SignatureA from the offerer and SignatureB from the accepter.
type FinalizedTx struct {
	Payload    []byte
	SignatureA adaptor.Signature
	SignatureB adaptor.Signature
}

// MultisigFundAddress holds the two keys the funding output is locked to.
type MultisigFundAddress struct {
	OffererKey  *btcec.PublicKey
	AccepterKey *btcec.PublicKey
}

// Verify reports whether both signatures of tx are valid under the
// offerer's and the accepter's key respectively.
func (a MultisigFundAddress) Verify(scheme adaptor.Scheme, tx FinalizedTx) bool {
	msg := cet.Message(tx.Payload)
	return scheme.Verify(a.OffererKey, msg, tx.SignatureA) &&
		scheme.Verify(a.AccepterKey, msg, tx.SignatureB)
}

// Payout is the split of the collateral for the attested outcome, seen from
// one party.
type Payout struct {
	Role     Role
	Outcome  outcome.Outcome
	Offerer  uint64
	Accepter uint64
}

// Own is the amount paid to the party the payout was reported by.
func (p Payout) Own() uint64 {
	if p.Role == Offerer {
		return p.Offerer
	}
	return p.Accepter
}

func (p Payout) String() string {
	return fmt.Sprintf("Offerer gets %d sats and Accepter gets %d sats", p.Offerer, p.Accepter)
}

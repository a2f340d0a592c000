// Package cet builds the contract execution transaction each outcome settles
// with, and the digest both parties sign over it.
package cet

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/overlay"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

const finalSequence uint32 = 0xffffffff

var (
	ErrPayoutExceedsCollateral = errors.New("payout exceeds total collateral")
	ErrInvalidFundingOutpoint  = errors.New("invalid funding outpoint")
	ErrInvalidPayoutScript     = errors.New("invalid payout script")
)

// PayloadBuilder serializes the settlement of a given payout.
type PayloadBuilder interface {
	Payload(payout, totalCollateral uint64) ([]byte, error)
}

// TxBuilder spends the funding outpoint into the offerer's and the accepter's
// payout outputs. The accepter receives the payout, the offerer the rest.
type TxBuilder struct {
	FundingOutpoint    overlay.Outpoint
	OfferPayoutScript  *script.Script
	AcceptPayoutScript *script.Script
}

// NewTxBuilder returns a builder spending a zero outpoint to empty scripts.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		OfferPayoutScript:  &script.Script{},
		AcceptPayoutScript: &script.Script{},
	}
}

// NewTxBuilderFromSettlement parses the settlement section of a contract.
// Missing fields keep the defaults of NewTxBuilder.
func NewTxBuilderFromSettlement(s contract.Settlement) (*TxBuilder, error) {
	b := NewTxBuilder()

	if s.FundingOutpoint != "" {
		outpoint, err := overlay.NewOutpointFromString(s.FundingOutpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFundingOutpoint, s.FundingOutpoint, err)
		}
		b.FundingOutpoint = *outpoint
	}

	var err error
	if b.OfferPayoutScript, err = parseScript(s.OfferPayoutScript); err != nil {
		return nil, fmt.Errorf("offer: %w", err)
	}
	if b.AcceptPayoutScript, err = parseScript(s.AcceptPayoutScript); err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	return b, nil
}

// Payload returns the serialized transaction paying out.
func (b *TxBuilder) Payload(payout, totalCollateral uint64) ([]byte, error) {
	tx, err := b.Transaction(payout, totalCollateral)
	if err != nil {
		return nil, err
	}
	return tx.Bytes(), nil
}

// Transaction builds the unsigned settlement transaction. Outputs carrying
// zero satoshis are omitted.
func (b *TxBuilder) Transaction(payout, totalCollateral uint64) (*transaction.Transaction, error) {
	if payout > totalCollateral {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayoutExceedsCollateral, payout, totalCollateral)
	}

	txid := b.FundingOutpoint.Txid
	tx := transaction.NewTransaction()
	tx.AddInput(&transaction.TransactionInput{
		SourceTXID:       &txid,
		SourceTxOutIndex: b.FundingOutpoint.OutputIndex,
		UnlockingScript:  &script.Script{},
		SequenceNumber:   finalSequence,
	})

	if offer := totalCollateral - payout; offer > 0 {
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      offer,
			LockingScript: b.OfferPayoutScript,
		})
	}
	if payout > 0 {
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      payout,
			LockingScript: b.AcceptPayoutScript,
		})
	}
	return tx, nil
}

// Message returns the 32-byte digest signed for a payload.
func Message(payload []byte) []byte {
	h := chainhash.DoubleHashH(payload)
	return h[:]
}

func parseScript(s string) (*script.Script, error) {
	if s == "" {
		return &script.Script{}, nil
	}
	bb, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayoutScript, err)
	}
	sc := script.Script(bb)
	return &sc, nil
}

// Package controller drives one party through the settlement handshake:
// load the contract, precompute pre-signatures for every outcome, exchange
// and verify them with the counterparty, wait for the oracle and finalize.
package controller

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/cet"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/computation"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/storage"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gookit/slog"
)

var (
	ErrOracleKeyMismatch       = errors.New("announced oracle key does not match the contract")
	ErrInvalidOracleKey        = errors.New("contract declares a malformed oracle public key")
	ErrNotVerified             = errors.New("counterparty adaptors are not verified")
	ErrAttestedOutcomeUnknown  = errors.New("attested outcome is not part of the contract")
	ErrAttestationMismatch     = errors.New("attestation does not match the anticipation point")
	ErrInvalidAdaptedSignature = errors.New("adapted counterparty signature does not verify")
	ErrMissingCounterpartySig  = errors.New("no counterparty pre-signature stored for outcome")
)

// SnapshotStore persists the storage of a party once it changes.
type SnapshotStore interface {
	Save(ctx context.Context, contractID string, st *storage.ArrayStorage) error
}

// Controller is the settlement state machine of one party. It is not safe
// for concurrent use.
type Controller struct {
	role      Role
	oracle    oracle.Oracle
	scheme    adaptor.Scheme
	strategy  crypto.Strategy
	executor  computation.Executor
	space     *outcome.Space
	snapshots SnapshotStore

	state      State
	signingKey *btcec.PrivateKey

	cpKey           *btcec.PublicKey
	cpKeySaved      bool
	cpAdaptors      []storage.TaggedPreSignature
	cpAdaptorsSaved bool
	verified        bool
	committed       bool

	input        contract.ContractInput
	parsed       contract.ParsedContract
	announcement oracle.Announcement
	engine       *computation.Engine
	storage      *storage.ArrayStorage
	attestation  *oracle.Attestation
}

// New returns a controller in the Created state with a fresh signing key.
// The counterparty key starts as a placeholder that is never trusted.
func New(role Role, o oracle.Oracle, opts ...Option) (*Controller, error) {
	c := &Controller{
		role:     role,
		oracle:   o,
		scheme:   adaptor.Schnorr{},
		strategy: crypto.Basis{},
		executor: computation.Parallel{},
		state:    Created,
		cpKey:    btcec.Generator(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.signingKey == nil {
		key, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		c.signingKey = key
	}
	return c, nil
}

func (c *Controller) Role() Role   { return c.role }
func (c *Controller) State() State { return c.state }

// LoadInput reads, validates and flattens the contract at path.
func (c *Controller) LoadInput(path string) error {
	if err := c.expect("LoadInput", Created, ContractLoaded); err != nil {
		return err
	}
	input, err := contract.ReadInput(path)
	if err != nil {
		return err
	}
	return c.LoadContract(input)
}

// LoadContract validates and flattens an already decoded contract. On error
// the controller keeps its previous contract and state.
func (c *Controller) LoadContract(input contract.ContractInput) error {
	if err := c.expect("LoadContract", Created, ContractLoaded); err != nil {
		return err
	}

	space, err := c.spaceFor(input)
	if err != nil {
		return err
	}
	parsed, err := contract.ParseContractInput(input, space)
	if err != nil {
		return err
	}

	c.input = input
	c.parsed = parsed
	c.transition(ContractLoaded, slog.M{"outcomes": len(parsed), "event": input.ContractInfo.Oracle.EventID})
	return nil
}

// InitStorage fetches the oracle announcement and precomputes the payload,
// anticipation point and own pre-signature of every outcome.
func (c *Controller) InitStorage(ctx context.Context) error {
	if err := c.expect("InitStorage", ContractLoaded); err != nil {
		return err
	}

	eventID := c.input.ContractInfo.Oracle.EventID
	announcement, err := c.oracle.EventAnnouncement(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to fetch announcement of %q: %w", eventID, err)
	}
	if err := c.checkOracleKey(announcement.PublicKey); err != nil {
		return err
	}

	payloads, err := cet.NewTxBuilderFromSettlement(c.input.Settlement)
	if err != nil {
		return err
	}
	engine := computation.New(
		computation.WithScheme(c.scheme),
		computation.WithStrategy(c.strategy),
		computation.WithExecutor(c.executor),
		computation.WithPayloadBuilder(payloads),
	)

	space, err := c.spaceFor(c.input)
	if err != nil {
		return err
	}
	elements, err := engine.ComputeStorageElements(ctx, c.parsed, computation.Params{
		TotalCollateral: c.input.TotalCollateral(),
		SigningKey:      c.signingKey,
		OraclePublicKey: announcement.PublicKey,
		OracleNonce:     announcement.PublicNonce,
		Space:           space,
	})
	if err != nil {
		return err
	}

	st := storage.NewArrayStorage(space)
	for i, el := range elements {
		if err := st.PutElement(c.parsed[i].Outcome, el); err != nil {
			return err
		}
	}
	if err := c.snapshot(ctx, st); err != nil {
		return err
	}

	c.announcement = announcement
	c.engine = engine
	c.storage = st
	c.transition(StorageInitialized, slog.M{"elements": st.Len(), "scheme": c.scheme.Name(), "strategy": c.strategy.Name()})
	return nil
}

// ShareVerificationKey returns the key the counterparty verifies this
// party's signatures with.
func (c *Controller) ShareVerificationKey() (*btcec.PublicKey, error) {
	if err := c.expectAtLeast("ShareVerificationKey", StorageInitialized); err != nil {
		return nil, err
	}
	return c.signingKey.PubKey(), nil
}

// ShareAdaptors returns this party's pre-signatures tagged by outcome.
func (c *Controller) ShareAdaptors() ([]storage.TaggedPreSignature, error) {
	if err := c.expectAtLeast("ShareAdaptors", StorageInitialized); err != nil {
		return nil, err
	}
	return c.storage.GetAllMyAdaptors(), nil
}

// SaveCPVerificationKey stores the counterparty key. It is not trusted until
// the counterparty adaptors verify under it.
func (c *Controller) SaveCPVerificationKey(pk *btcec.PublicKey) error {
	if err := c.expect("SaveCPVerificationKey", StorageInitialized, KeysExchanged); err != nil {
		return err
	}
	if c.committed {
		return &StateError{Op: "SaveCPVerificationKey", Allowed: []State{StorageInitialized}, Actual: c.state}
	}
	c.cpKey = pk
	c.cpKeySaved = true
	c.verified = false
	c.exchangeComplete()
	return nil
}

// SaveCPAdaptors stores the counterparty pre-signatures. They are not
// trusted until VerifyCPAdaptors reports true.
func (c *Controller) SaveCPAdaptors(tagged []storage.TaggedPreSignature) error {
	if err := c.expect("SaveCPAdaptors", StorageInitialized, KeysExchanged); err != nil {
		return err
	}
	if c.committed {
		return &StateError{Op: "SaveCPAdaptors", Allowed: []State{StorageInitialized}, Actual: c.state}
	}
	c.cpAdaptors = slices.Clone(tagged)
	c.cpAdaptorsSaved = true
	c.verified = false
	c.exchangeComplete()
	return nil
}

// VerifyCPAdaptors pre-verifies every counterparty adaptor. A false result
// means the counterparty cannot be trusted and the handshake must stop.
func (c *Controller) VerifyCPAdaptors(ctx context.Context) (bool, error) {
	if err := c.expect("VerifyCPAdaptors", KeysExchanged); err != nil {
		return false, err
	}
	ok, err := c.engine.VerifyCPAdaptors(ctx, c.cpKey, c.cpAdaptors, c.storage.Elements())
	if err != nil {
		return false, err
	}

	c.verified = ok
	logger := c.logger(slog.M{"verified": ok})
	if ok {
		logger.Info("counterparty adaptors verified")
	} else {
		logger.Error("counterparty adaptors failed verification")
	}
	return ok, nil
}

// UpdateCPAdaptors commits the verified counterparty adaptors into storage.
func (c *Controller) UpdateCPAdaptors(ctx context.Context) error {
	if err := c.expect("UpdateCPAdaptors", KeysExchanged); err != nil {
		return err
	}
	if !c.verified {
		return ErrNotVerified
	}
	if err := c.storage.UpdateCPAdaptors(c.cpAdaptors); err != nil {
		return err
	}
	if err := c.snapshot(ctx, c.storage); err != nil {
		return err
	}
	c.committed = true
	c.logger(slog.M{"adaptors": len(c.cpAdaptors)}).Info("counterparty adaptors committed")
	return nil
}

// WaitAttestation blocks until the oracle attests the contract event and
// checks the attestation against the stored anticipation point.
func (c *Controller) WaitAttestation(ctx context.Context) error {
	if err := c.expect("WaitAttestation", KeysExchanged); err != nil {
		return err
	}
	if !c.committed {
		return ErrNotVerified
	}

	eventID := c.input.ContractInfo.Oracle.EventID
	att, err := c.oracle.EventAttestation(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to fetch attestation of %q: %w", eventID, err)
	}
	if att.Secret == nil {
		return fmt.Errorf("%w: missing secret", ErrAttestationMismatch)
	}
	el, ok := c.storage.GetElement(outcome.Outcome(att.Outcome))
	if !ok {
		return fmt.Errorf("%w: %d", ErrAttestedOutcomeUnknown, att.Outcome)
	}

	var p btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(att.Secret, &p)
	p.ToAffine()
	if !btcec.NewPublicKey(&p.X, &p.Y).IsEqual(el.AnticipationPoint) {
		return fmt.Errorf("%w: outcome %d", ErrAttestationMismatch, att.Outcome)
	}

	c.attestation = &att
	c.transition(Attested, slog.M{"outcome": att.Outcome})
	return nil
}

// FinalizeTx signs the payload of the attested outcome and completes the
// counterparty pre-signature with the attestation.
func (c *Controller) FinalizeTx() (FinalizedTx, error) {
	if err := c.expect("FinalizeTx", Attested); err != nil {
		return FinalizedTx{}, err
	}

	o := outcome.Outcome(c.attestation.Outcome)
	el, _ := c.storage.GetElement(o)
	if el.CounterpartyPreSignature == nil {
		return FinalizedTx{}, fmt.Errorf("%w: %d", ErrMissingCounterpartySig, o)
	}
	msg := cet.Message(el.Payload)

	own, err := c.scheme.Sign(c.signingKey, msg)
	if err != nil {
		return FinalizedTx{}, err
	}
	cp, err := c.scheme.Adapt(el.CounterpartyPreSignature, c.attestation.Secret)
	if err != nil {
		return FinalizedTx{}, err
	}
	if !c.scheme.Verify(c.cpKey, msg, cp) {
		return FinalizedTx{}, fmt.Errorf("%w: outcome %d", ErrInvalidAdaptedSignature, o)
	}

	tx := FinalizedTx{Payload: el.Payload}
	if c.role == Offerer {
		tx.SignatureA, tx.SignatureB = own, cp
	} else {
		tx.SignatureA, tx.SignatureB = cp, own
	}

	c.transition(Finalized, slog.M{"outcome": o, "payout": el.Payout})
	return tx, nil
}

// FundAddress returns the two keys the funding output is locked to.
func (c *Controller) FundAddress() (MultisigFundAddress, error) {
	if err := c.expectAtLeast("FundAddress", KeysExchanged); err != nil {
		return MultisigFundAddress{}, err
	}
	own := c.signingKey.PubKey()
	if c.role == Offerer {
		return MultisigFundAddress{OffererKey: own, AccepterKey: c.cpKey}, nil
	}
	return MultisigFundAddress{OffererKey: c.cpKey, AccepterKey: own}, nil
}

// Payout reports how the collateral is split for the attested outcome.
func (c *Controller) Payout() (Payout, error) {
	if err := c.expectAtLeast("Payout", Attested); err != nil {
		return Payout{}, err
	}
	o := outcome.Outcome(c.attestation.Outcome)
	accept, _ := c.parsed.Payout(o)
	return Payout{
		Role:     c.role,
		Outcome:  o,
		Offerer:  c.input.TotalCollateral() - accept,
		Accepter: accept,
	}, nil
}

// Elements returns a copy of the stored elements in outcome order.
func (c *Controller) Elements() ([]storage.Element, error) {
	if err := c.expectAtLeast("Elements", StorageInitialized); err != nil {
		return nil, err
	}
	return c.storage.Elements(), nil
}

func (c *Controller) spaceFor(input contract.ContractInput) (outcome.Space, error) {
	if c.space != nil {
		return *c.space, nil
	}
	return outcome.NewSpace(input.ContractInfo.Oracle.NbDigits)
}

func (c *Controller) checkOracleKey(announced *btcec.PublicKey) error {
	declared := c.input.ContractInfo.Oracle.PublicKey
	if declared == "" {
		return nil
	}
	bb, err := hex.DecodeString(declared)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOracleKey, err)
	}
	pk, err := btcec.ParsePubKey(bb)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOracleKey, err)
	}
	if announced == nil || !pk.IsEqual(announced) {
		return ErrOracleKeyMismatch
	}
	return nil
}

func (c *Controller) exchangeComplete() {
	if c.state == StorageInitialized && c.cpKeySaved && c.cpAdaptorsSaved {
		c.transition(KeysExchanged, nil)
	}
}

func (c *Controller) snapshot(ctx context.Context, st *storage.ArrayStorage) error {
	if c.snapshots == nil {
		return nil
	}
	if err := c.snapshots.Save(ctx, c.contractID(), st); err != nil {
		return fmt.Errorf("failed to snapshot storage: %w", err)
	}
	return nil
}

func (c *Controller) contractID() string {
	return c.input.ContractInfo.Oracle.EventID + "/" + c.role.String()
}

func (c *Controller) expect(op string, allowed ...State) error {
	if slices.Contains(allowed, c.state) {
		return nil
	}
	return &StateError{Op: op, Allowed: allowed, Actual: c.state}
}

func (c *Controller) expectAtLeast(op string, lowest State) error {
	if c.state >= lowest {
		return nil
	}
	allowed := make([]State, 0, int(Finalized-lowest)+1)
	for s := lowest; s <= Finalized; s++ {
		allowed = append(allowed, s)
	}
	return &StateError{Op: op, Allowed: allowed, Actual: c.state}
}

func (c *Controller) transition(to State, fields slog.M) {
	from := c.state
	c.state = to
	if fields == nil {
		fields = slog.M{}
	}
	fields["from"] = from.String()
	c.logger(fields).Info("state transition")
}

func (c *Controller) logger(fields slog.M) *slog.Record {
	all := slog.M{
		"category": "controller",
		"role":     c.role.String(),
		"state":    c.state.String(),
	}
	for k, v := range fields {
		all[k] = v
	}
	return slog.WithFields(all)
}

package controller

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/computation"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/btcsuite/btcd/btcec/v2"
)

// Option configures a Controller.
type Option func(*Controller)

// WithScheme selects the adaptor signature scheme. Both parties must agree.
func WithScheme(s adaptor.Scheme) Option {
	return func(c *Controller) { c.scheme = s }
}

// WithStrategy selects how anticipation points are derived. It must match
// the strategy the oracle attests with.
func WithStrategy(s crypto.Strategy) Option {
	return func(c *Controller) { c.strategy = s }
}

func WithExecutor(x computation.Executor) Option {
	return func(c *Controller) { c.executor = x }
}

// WithSpace fixes the outcome space contracts must declare. Without it the
// space follows the contract's own nb_digits.
func WithSpace(space outcome.Space) Option {
	return func(c *Controller) { c.space = &space }
}

func WithSigningKey(key *btcec.PrivateKey) Option {
	return func(c *Controller) { c.signingKey = key }
}

// WithSnapshotStore saves the storage after it is initialized and after the
// counterparty adaptors are committed.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Controller) { c.snapshots = store }
}

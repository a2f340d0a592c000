package app

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// PublicKeyProvider defines the interface for retrieving the oracle's
// long-term public key.
type PublicKeyProvider interface {
	PublicKey(ctx context.Context) (*btcec.PublicKey, error)
}

// PublicKeyService retrieves the oracle's public key using the configured PublicKeyProvider.
type PublicKeyService struct {
	provider PublicKeyProvider
}

// PublicKey returns the oracle's public key or an application error when the provider fails.
func (s *PublicKeyService) PublicKey(ctx context.Context) (*btcec.PublicKey, error) {
	pk, err := s.provider.PublicKey(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, NewContextCancellationError()
		}
		return nil, NewPublicKeyProviderError(err)
	}
	if pk == nil {
		return nil, NewPublicKeyProviderError(errors.New("provider returned a nil public key"))
	}
	return pk, nil
}

// NewPublicKeyService creates a new PublicKeyService with the given provider.
// Panics if the provider is nil.
func NewPublicKeyService(provider PublicKeyProvider) *PublicKeyService {
	if provider == nil {
		panic("public key provider is nil")
	}
	return &PublicKeyService{provider: provider}
}

// NewPublicKeyProviderError returns an Error indicating that the oracle failed to provide its public key.
func NewPublicKeyProviderError(err error) Error {
	return NewProviderFailureError(
		err.Error(),
		"Unable to retrieve the oracle public key due to an internal error. Please try again later or contact the support team.",
	)
}

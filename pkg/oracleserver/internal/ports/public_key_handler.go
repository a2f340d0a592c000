package ports

import (
	"context"
	"encoding/hex"

	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gofiber/fiber/v2"
)

// PublicKeyService defines the interface for a service responsible for retrieving the oracle public key.
type PublicKeyService interface {
	PublicKey(ctx context.Context) (*btcec.PublicKey, error)
}

// PublicKeyHandler handles incoming requests for the oracle public key.
type PublicKeyHandler struct {
	service PublicKeyService
}

// Handle processes an HTTP request for the oracle public key.
// It returns an HTTP 200 OK with the hex encoded compressed key.
func (h *PublicKeyHandler) Handle(c *fiber.Ctx) error {
	pk, err := h.service.PublicKey(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(NewPublicKeySuccessResponse(pk))
}

// NewPublicKeyHandler creates a new PublicKeyHandler with the given provider.
// Panics if the provider is nil.
func NewPublicKeyHandler(provider app.PublicKeyProvider) *PublicKeyHandler {
	if provider == nil {
		panic("public key provider is nil")
	}
	return &PublicKeyHandler{service: app.NewPublicKeyService(provider)}
}

// NewPublicKeySuccessResponse creates the response body for the given oracle key.
func NewPublicKeySuccessResponse(pk *btcec.PublicKey) openapi.PublicKey {
	return openapi.PublicKey{PublicKey: hex.EncodeToString(pk.SerializeCompressed())}
}

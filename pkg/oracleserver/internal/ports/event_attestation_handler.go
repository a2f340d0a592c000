package ports

import (
	"context"
	"encoding/hex"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/gofiber/fiber/v2"
)

// EventAttestationService defines the interface for a service responsible for retrieving event attestations.
type EventAttestationService interface {
	EventAttestation(ctx context.Context, eventID app.EventID) (oracle.Attestation, error)
}

// EventAttestationHandler handles incoming requests for event attestations.
type EventAttestationHandler struct {
	service EventAttestationService
}

// Handle processes an HTTP request for the attestation of the given event.
// Events whose attestation time lies in the future are answered with 425 Too Early.
func (h *EventAttestationHandler) Handle(c *fiber.Ctx, eventID string) error {
	att, err := h.service.EventAttestation(c.UserContext(), app.EventID(eventID))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(NewEventAttestationSuccessResponse(eventID, att))
}

// NewEventAttestationHandler creates a new EventAttestationHandler with the given provider.
// Panics if the provider is nil.
func NewEventAttestationHandler(provider app.EventAttestationProvider) *EventAttestationHandler {
	if provider == nil {
		panic("event attestation provider is nil")
	}
	return &EventAttestationHandler{service: app.NewEventAttestationService(provider)}
}

// NewEventAttestationSuccessResponse maps an attestation to its response body.
func NewEventAttestationSuccessResponse(eventID string, att oracle.Attestation) openapi.EventAttestation {
	secret := att.Secret.Bytes()
	return openapi.EventAttestation{
		EventID: eventID,
		Outcome: att.Outcome,
		Secret:  hex.EncodeToString(secret[:]),
	}
}

package ports

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/gofiber/fiber/v2"
)

// OracleProvider aggregates every capability the oracle API depends on.
type OracleProvider interface {
	app.PublicKeyProvider
	app.EventAttestationProvider
}

// HandlerRegistryService defines the main point for registering HTTP handler dependencies.
// It acts as a central registry for mapping API endpoints to their handler implementations.
type HandlerRegistryService struct {
	publicKey         *PublicKeyHandler
	eventAnnouncement *EventAnnouncementHandler
	eventAttestation  *EventAttestationHandler
}

// OraclePublicKey method delegates the request to the configured public key handler.
func (h *HandlerRegistryService) OraclePublicKey(c *fiber.Ctx) error {
	return h.publicKey.Handle(c)
}

// OracleEventAnnouncement method delegates the request to the configured announcement handler.
func (h *HandlerRegistryService) OracleEventAnnouncement(c *fiber.Ctx, eventID string) error {
	return h.eventAnnouncement.Handle(c, eventID)
}

// OracleEventAttestation method delegates the request to the configured attestation handler.
func (h *HandlerRegistryService) OracleEventAttestation(c *fiber.Ctx, eventID string) error {
	return h.eventAttestation.Handle(c, eventID)
}

// NewHandlerRegistryService creates and returns a new HandlerRegistryService instance.
// It initializes all handler implementations with their required dependencies.
func NewHandlerRegistryService(provider OracleProvider) *HandlerRegistryService {
	return &HandlerRegistryService{
		publicKey:         NewPublicKeyHandler(provider),
		eventAnnouncement: NewEventAnnouncementHandler(provider),
		eventAttestation:  NewEventAttestationHandler(provider),
	}
}

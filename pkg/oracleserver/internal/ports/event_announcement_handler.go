package ports

import (
	"context"
	"encoding/hex"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/gofiber/fiber/v2"
	"k8s.io/utils/ptr"
)

// EventAnnouncementService defines the interface for a service responsible for retrieving event announcements.
type EventAnnouncementService interface {
	EventAnnouncement(ctx context.Context, eventID app.EventID) (oracle.Announcement, error)
}

// EventAnnouncementHandler handles incoming requests for event announcements.
type EventAnnouncementHandler struct {
	service EventAnnouncementService
}

// Handle processes an HTTP request for the announcement of the given event.
func (h *EventAnnouncementHandler) Handle(c *fiber.Ctx, eventID string) error {
	ann, err := h.service.EventAnnouncement(c.UserContext(), app.EventID(eventID))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(NewEventAnnouncementSuccessResponse(eventID, ann))
}

// NewEventAnnouncementHandler creates a new EventAnnouncementHandler with the given provider.
// Panics if the provider is nil.
func NewEventAnnouncementHandler(provider app.EventAnnouncementProvider) *EventAnnouncementHandler {
	if provider == nil {
		panic("event announcement provider is nil")
	}
	return &EventAnnouncementHandler{service: app.NewEventAnnouncementService(provider)}
}

// NewEventAnnouncementSuccessResponse maps an announcement to its response body.
// A zero attestation time is omitted.
func NewEventAnnouncementSuccessResponse(eventID string, ann oracle.Announcement) openapi.EventAnnouncement {
	res := openapi.EventAnnouncement{
		EventID:     eventID,
		PublicKey:   hex.EncodeToString(ann.PublicKey.SerializeCompressed()),
		PublicNonce: hex.EncodeToString(ann.PublicNonce.SerializeCompressed()),
	}
	if !ann.NextAttestationTime.IsZero() {
		res.NextAttestationTime = ptr.To(ann.NextAttestationTime.UTC())
	}
	return res
}

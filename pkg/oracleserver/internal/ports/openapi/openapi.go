// Package openapi holds the wire types and route bindings of the oracle API.
package openapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oapi-codegen/runtime"
)

const (
	// BearerAuthScopes is the user context key under which the access scopes
	// of the matched route are stored.
	BearerAuthScopes = "BearerAuth.Scopes"

	// PublicScope marks routes available to every requester.
	PublicScope = "public"

	// AttestationScope marks routes that require the bearer token when one is configured.
	AttestationScope = "attestation"
)

// Error is the body of every non-2xx response.
type Error struct {
	Message string `json:"message"`
}

// PublicKey is the body of a successful public key response.
type PublicKey struct {
	// PublicKey is the hex encoded compressed oracle public key.
	PublicKey string `json:"publicKey"`
}

// EventAnnouncement is the body of a successful announcement response.
type EventAnnouncement struct {
	EventID             string     `json:"eventId"`
	PublicKey           string     `json:"publicKey"`
	PublicNonce         string     `json:"publicNonce"`
	NextAttestationTime *time.Time `json:"nextAttestationTime,omitempty"`
}

// EventAttestation is the body of a successful attestation response.
type EventAttestation struct {
	EventID string `json:"eventId"`
	Outcome uint32 `json:"outcome"`

	// Secret is the hex encoded 32 byte attestation scalar.
	Secret string `json:"secret"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/v1/oracle/publicKey)
	OraclePublicKey(c *fiber.Ctx) error

	// (GET /api/v1/oracle/events/{eventID}/announcement)
	OracleEventAnnouncement(c *fiber.Ctx, eventID string) error

	// (GET /api/v1/oracle/events/{eventID}/attestation)
	OracleEventAttestation(c *fiber.Ctx, eventID string) error
}

// ServerInterfaceWrapper converts fiber contexts to parameters and runs the
// per-handler middleware once the route scopes are known.
type ServerInterfaceWrapper struct {
	Handler           ServerInterface
	HandlerMiddleware []fiber.Handler
}

func (siw *ServerInterfaceWrapper) OraclePublicKey(c *fiber.Ctx) error {
	if err := siw.authorize(c, PublicScope); err != nil {
		return err
	}
	return siw.Handler.OraclePublicKey(c)
}

func (siw *ServerInterfaceWrapper) OracleEventAnnouncement(c *fiber.Ctx) error {
	eventID, err := bindEventID(c)
	if err != nil {
		return err
	}
	if err := siw.authorize(c, PublicScope); err != nil {
		return err
	}
	return siw.Handler.OracleEventAnnouncement(c, eventID)
}

func (siw *ServerInterfaceWrapper) OracleEventAttestation(c *fiber.Ctx) error {
	eventID, err := bindEventID(c)
	if err != nil {
		return err
	}
	if err := siw.authorize(c, AttestationScope); err != nil {
		return err
	}
	return siw.Handler.OracleEventAttestation(c, eventID)
}

func (siw *ServerInterfaceWrapper) authorize(c *fiber.Ctx, scopes ...string) error {
	c.Context().SetUserValue(BearerAuthScopes, scopes)
	for _, m := range siw.HandlerMiddleware {
		if err := m(c); err != nil {
			return err
		}
	}
	return nil
}

func bindEventID(c *fiber.Ctx) (string, error) {
	var eventID string
	err := runtime.BindStyledParameterWithOptions("simple", "eventID", c.Params("eventID"), &eventID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Errorf("Invalid format for parameter eventID: %w", err).Error())
	}
	return eventID, nil
}

// FiberServerOptions provides options for the Fiber server.
type FiberServerOptions struct {
	BaseURL           string
	GlobalMiddleware  []fiber.Handler
	HandlerMiddleware []fiber.Handler
}

// RegisterHandlers registers the oracle API routes on router.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, FiberServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options FiberServerOptions) {
	wrapper := ServerInterfaceWrapper{
		Handler:           si,
		HandlerMiddleware: options.HandlerMiddleware,
	}

	for _, m := range options.GlobalMiddleware {
		router.Use(m)
	}

	router.Get(options.BaseURL+"/api/v1/oracle/publicKey", wrapper.OraclePublicKey)
	router.Get(options.BaseURL+"/api/v1/oracle/events/:eventID/announcement", wrapper.OracleEventAnnouncement)
	router.Get(options.BaseURL+"/api/v1/oracle/events/:eventID/attestation", wrapper.OracleEventAttestation)
}

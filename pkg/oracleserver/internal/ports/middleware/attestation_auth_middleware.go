package middleware

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"

	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/gofiber/fiber/v2"
)

const bearerScheme = "Bearer "

// AttestationAuthMiddleware guards routes registered with the attestation
// scope behind a static bearer token. Public routes pass through untouched.
// An empty token leaves attestations public as well.
func AttestationAuthMiddleware(token string) fiber.Handler {
	expected := []byte(token)

	return func(c *fiber.Ctx) error {
		scopes, ok := c.Context().UserValue(openapi.BearerAuthScopes).([]string)
		if !ok || len(scopes) == 0 {
			return NewMissingRouteScopesError()
		}
		if token == "" || !slices.Contains(scopes, openapi.AttestationScope) {
			return nil
		}

		header := c.Get(fiber.HeaderAuthorization)
		switch {
		case header == "":
			return NewMissingAttestationTokenError()
		case !strings.HasPrefix(header, bearerScheme):
			return NewMalformedAttestationTokenError()
		}

		presented := []byte(strings.TrimPrefix(header, bearerScheme))
		if subtle.ConstantTimeCompare(presented, expected) != 1 {
			return NewInvalidAttestationTokenError()
		}
		return nil
	}
}

func NewMissingAttestationTokenError() app.Error {
	const str = "Attestations require an Authorization header with a Bearer token"
	return app.NewAuthorizationError(str, str)
}

func NewMalformedAttestationTokenError() app.Error {
	const str = "Attestations require the Bearer authorization scheme"
	return app.NewAuthorizationError(str, str)
}

func NewInvalidAttestationTokenError() app.Error {
	const str = "The Bearer token is not allowed to read attestations"
	return app.NewAccessForbiddenError(str, str)
}

// NewMissingRouteScopesError reports a route registered without scopes under
// the openapi.BearerAuthScopes user value.
func NewMissingRouteScopesError() app.Error {
	return app.NewAuthorizationError(
		fmt.Sprintf("route scopes missing: expected a non empty string slice under the %s user value", openapi.BearerAuthScopes),
		"Unable to authorize the request to this endpoint.")
}

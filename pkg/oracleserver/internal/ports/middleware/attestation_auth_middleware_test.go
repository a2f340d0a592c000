package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/middleware"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/testabilities"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const bearerToken = "valid_oracle_token"

func TestAttestationAuthMiddleware_ValidCases(t *testing.T) {
	fixture := testabilities.GivenOracleFixture(t)

	tests := map[string]struct {
		token        string
		path         string
		headers      map[string]string
		expectations testabilities.OracleProviderMockExpectations
	}{
		"attestation with a valid bearer token": {
			token:   bearerToken,
			path:    "/api/v1/oracle/events/e1/attestation",
			headers: map[string]string{fiber.HeaderAuthorization: "Bearer " + bearerToken},
			expectations: testabilities.OracleProviderMockExpectations{
				Announcement:     fixture.Announcement(),
				Attestation:      fixture.Attestation(),
				AnnouncementCall: true,
				AttestationCall:  true,
			},
		},
		"attestation without a token when none is configured": {
			path: "/api/v1/oracle/events/e1/attestation",
			expectations: testabilities.OracleProviderMockExpectations{
				Announcement:     fixture.Announcement(),
				Attestation:      fixture.Attestation(),
				AnnouncementCall: true,
				AttestationCall:  true,
			},
		},
		"public route without a token when one is configured": {
			token: bearerToken,
			path:  "/api/v1/oracle/events/e1/announcement",
			expectations: testabilities.OracleProviderMockExpectations{
				Announcement:     fixture.Announcement(),
				AnnouncementCall: true,
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			mock := testabilities.NewOracleProviderMock(t, tc.expectations)
			server := oracleserver.NewOracleServerFixture(t, mock, oracleserver.WithBearerToken(tc.token))

			// when:
			res, _ := server.Client().
				R().
				SetHeaders(tc.headers).
				Get(tc.path)

			// then:
			require.Equal(t, fiber.StatusOK, res.StatusCode())
			mock.AssertCalled()
		})
	}
}

func TestAttestationAuthMiddleware_InvalidCases(t *testing.T) {
	tests := map[string]struct {
		headers            map[string]string
		expectedStatusCode int
		expectedResponse   app.Error
	}{
		"missing Authorization header": {
			expectedStatusCode: fiber.StatusUnauthorized,
			expectedResponse:   middleware.NewMissingAttestationTokenError(),
		},
		"Authorization header without the Bearer scheme": {
			headers:            map[string]string{fiber.HeaderAuthorization: "Basic " + bearerToken},
			expectedStatusCode: fiber.StatusUnauthorized,
			expectedResponse:   middleware.NewMalformedAttestationTokenError(),
		},
		"Authorization header with an invalid token": {
			headers:            map[string]string{fiber.HeaderAuthorization: "Bearer " + bearerToken + "x"},
			expectedStatusCode: fiber.StatusForbidden,
			expectedResponse:   middleware.NewInvalidAttestationTokenError(),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			mock := testabilities.NewOracleProviderMock(t, testabilities.OracleProviderMockExpectations{})
			server := oracleserver.NewOracleServerFixture(t, mock, oracleserver.WithBearerToken(bearerToken))

			// when:
			var actual openapi.Error
			res, _ := server.Client().
				R().
				SetHeaders(tc.headers).
				SetError(&actual).
				Get("/api/v1/oracle/events/e1/attestation")

			// then:
			require.Equal(t, tc.expectedStatusCode, res.StatusCode())
			require.Equal(t, testabilities.NewTestOpenapiErrorResponse(t, tc.expectedResponse), actual)
			mock.AssertCalled()
		})
	}
}

func TestAttestationAuthMiddleware_MissingScopes(t *testing.T) {
	tests := map[string]struct {
		scopes           any
		expectedResponse app.Error
	}{
		"no scopes in the user context": {
			scopes:           nil,
			expectedResponse: middleware.NewMissingRouteScopesError(),
		},
		"empty scopes in the user context": {
			scopes:           []string{},
			expectedResponse: middleware.NewMissingRouteScopesError(),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			handler := middleware.AttestationAuthMiddleware(bearerToken)
			f := fiber.New()
			var actual error
			f.Get("/", func(c *fiber.Ctx) error {
				if tc.scopes != nil {
					c.Context().SetUserValue(openapi.BearerAuthScopes, tc.scopes)
				}
				actual = handler(c)
				return nil
			})

			// when:
			_, err := f.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)

			// then:
			require.NoError(t, err)
			require.Equal(t, tc.expectedResponse, actual)
		})
	}
}

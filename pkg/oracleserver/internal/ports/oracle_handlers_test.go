package ports_test

import (
	"errors"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/app"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/testabilities"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyHandler_ValidCase(t *testing.T) {
	// given:
	fixture := testabilities.GivenOracleFixture(t)
	mock := testabilities.NewOracleProviderMock(t, testabilities.OracleProviderMockExpectations{
		PublicKey:     fixture.Key.PubKey(),
		PublicKeyCall: true,
	})
	server := oracleserver.NewOracleServerFixture(t, mock)

	// when:
	var actual openapi.PublicKey
	res, _ := server.Client().
		R().
		SetResult(&actual).
		Get("/api/v1/oracle/publicKey")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, ports.NewPublicKeySuccessResponse(fixture.Key.PubKey()), actual)
	mock.AssertCalled()
}

func TestEventAnnouncementHandler_ValidCase(t *testing.T) {
	// given:
	fixture := testabilities.GivenOracleFixture(t)
	mock := testabilities.NewOracleProviderMock(t, testabilities.OracleProviderMockExpectations{
		Announcement:     fixture.Announcement(),
		AnnouncementCall: true,
	})
	server := oracleserver.NewOracleServerFixture(t, mock)

	// when:
	var actual openapi.EventAnnouncement
	res, _ := server.EventRequest("btc-usd-2024").
		SetResult(&actual).
		Get("/api/v1/oracle/events/{eventID}/announcement")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, ports.NewEventAnnouncementSuccessResponse("btc-usd-2024", fixture.Announcement()), actual)
	require.NotNil(t, actual.NextAttestationTime)
	require.True(t, fixture.AttestedAt.Equal(*actual.NextAttestationTime))
	mock.AssertCalled()
}

func TestEventAttestationHandler_ValidCase(t *testing.T) {
	// given:
	fixture := testabilities.GivenOracleFixture(t)
	mock := testabilities.NewOracleProviderMock(t, testabilities.OracleProviderMockExpectations{
		Announcement:     fixture.Announcement(),
		Attestation:      fixture.Attestation(),
		AnnouncementCall: true,
		AttestationCall:  true,
	})
	server := oracleserver.NewOracleServerFixture(t, mock)

	// when:
	var actual openapi.EventAttestation
	res, _ := server.EventRequest("btc-usd-2024").
		SetResult(&actual).
		Get("/api/v1/oracle/events/{eventID}/attestation")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, ports.NewEventAttestationSuccessResponse("btc-usd-2024", fixture.Attestation()), actual)
	require.Equal(t, fixture.Outcome, actual.Outcome)
	mock.AssertCalled()
}

func TestOracleHandlers_InvalidCases(t *testing.T) {
	fixture := testabilities.GivenOracleFixture(t)
	providerErr := errors.New("internal oracle test error")

	tests := map[string]struct {
		path               string
		expectations       testabilities.OracleProviderMockExpectations
		expectedStatusCode int
		expectedResponse   openapi.Error
	}{
		"public key provider failure": {
			path: "/api/v1/oracle/publicKey",
			expectations: testabilities.OracleProviderMockExpectations{
				PublicKeyError: providerErr,
				PublicKeyCall:  true,
			},
			expectedStatusCode: fiber.StatusInternalServerError,
			expectedResponse:   testabilities.NewTestOpenapiErrorResponse(t, app.NewPublicKeyProviderError(providerErr)),
		},
		"announcement of an unknown event": {
			path: "/api/v1/oracle/events/missing/announcement",
			expectations: testabilities.OracleProviderMockExpectations{
				AnnouncementError: oracle.ErrUnknownEvent,
				AnnouncementCall:  true,
			},
			expectedStatusCode: fiber.StatusNotFound,
			expectedResponse:   testabilities.NewTestOpenapiErrorResponse(t, app.NewUnknownEventError(oracle.ErrUnknownEvent)),
		},
		"announcement with a blank event id": {
			path:               "/api/v1/oracle/events/%20/announcement",
			expectedStatusCode: fiber.StatusBadRequest,
			expectedResponse:   testabilities.NewTestOpenapiErrorResponse(t, app.NewEmptyEventIDError()),
		},
		"attestation before the attestation time": {
			path: "/api/v1/oracle/events/later/attestation",
			expectations: testabilities.OracleProviderMockExpectations{
				Announcement:     fixture.FutureAnnouncement(),
				AnnouncementCall: true,
			},
			expectedStatusCode: fiber.StatusTooEarly,
			expectedResponse:   testabilities.NewTestOpenapiErrorResponse(t, app.NewEventNotYetAttestedError(oracle.ErrNotYetAttested)),
		},
		"attestation provider failure": {
			path: "/api/v1/oracle/events/broken/attestation",
			expectations: testabilities.OracleProviderMockExpectations{
				Announcement:     fixture.Announcement(),
				AttestationError: providerErr,
				AnnouncementCall: true,
				AttestationCall:  true,
			},
			expectedStatusCode: fiber.StatusInternalServerError,
			expectedResponse:   testabilities.NewTestOpenapiErrorResponse(t, app.NewEventAttestationProviderError(providerErr)),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			mock := testabilities.NewOracleProviderMock(t, tc.expectations)
			server := oracleserver.NewOracleServerFixture(t, mock)

			// when:
			var actual openapi.Error
			res, _ := server.Client().
				R().
				SetError(&actual).
				Get(tc.path)

			// then:
			require.Equal(t, tc.expectedStatusCode, res.StatusCode())
			require.Equal(t, tc.expectedResponse, actual)
			mock.AssertCalled()
		})
	}
}

func TestOracleHandlers_UnconfiguredOracle(t *testing.T) {
	// given:
	server := oracleserver.NewServerTestFixture(t)

	// when:
	var actual openapi.Error
	res, _ := server.Client().
		R().
		SetError(&actual).
		Get("/api/v1/oracle/publicKey")

	// then:
	require.Equal(t, fiber.StatusInternalServerError, res.StatusCode())
	require.NotEmpty(t, actual.Message)
}

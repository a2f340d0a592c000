package testabilities

import (
	"context"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// OracleProviderMockExpectations defines the expected behavior of the OracleProviderMock during a test.
type OracleProviderMockExpectations struct {
	PublicKey    *btcec.PublicKey
	Announcement oracle.Announcement
	Attestation  oracle.Attestation

	// PublicKeyError, AnnouncementError and AttestationError are returned
	// from the matching method when set.
	PublicKeyError    error
	AnnouncementError error
	AttestationError  error

	PublicKeyCall    bool
	AnnouncementCall bool
	AttestationCall  bool
}

// OracleProviderMock is a mock implementation of an oracle provider,
// used for testing the behavior of components that depend on the oracle.
type OracleProviderMock struct {
	t            *testing.T
	expectations OracleProviderMockExpectations

	publicKeyCalled    bool
	announcementCalled bool
	attestationCalled  bool
	eventIDs           []string
}

func (m *OracleProviderMock) PublicKey(context.Context) (*btcec.PublicKey, error) {
	m.t.Helper()
	m.publicKeyCalled = true
	if m.expectations.PublicKeyError != nil {
		return nil, m.expectations.PublicKeyError
	}
	return m.expectations.PublicKey, nil
}

func (m *OracleProviderMock) EventAnnouncement(_ context.Context, eventID string) (oracle.Announcement, error) {
	m.t.Helper()
	m.announcementCalled = true
	m.eventIDs = append(m.eventIDs, eventID)
	if m.expectations.AnnouncementError != nil {
		return oracle.Announcement{}, m.expectations.AnnouncementError
	}
	return m.expectations.Announcement, nil
}

func (m *OracleProviderMock) EventAttestation(_ context.Context, eventID string) (oracle.Attestation, error) {
	m.t.Helper()
	m.attestationCalled = true
	m.eventIDs = append(m.eventIDs, eventID)
	if m.expectations.AttestationError != nil {
		return oracle.Attestation{}, m.expectations.AttestationError
	}
	return m.expectations.Attestation, nil
}

// EventIDs returns the event identifiers the mock was called with, in call order.
func (m *OracleProviderMock) EventIDs() []string {
	return m.eventIDs
}

// AssertCalled verifies that every method was called if it was expected to be.
func (m *OracleProviderMock) AssertCalled() {
	m.t.Helper()
	require.Equal(m.t, m.expectations.PublicKeyCall, m.publicKeyCalled, "Discrepancy between expected and actual PublicKey call")
	require.Equal(m.t, m.expectations.AnnouncementCall, m.announcementCalled, "Discrepancy between expected and actual EventAnnouncement call")
	require.Equal(m.t, m.expectations.AttestationCall, m.attestationCalled, "Discrepancy between expected and actual EventAttestation call")
}

// NewOracleProviderMock creates a new instance of OracleProviderMock with the given expectations.
func NewOracleProviderMock(t *testing.T, expectations OracleProviderMockExpectations) *OracleProviderMock {
	return &OracleProviderMock{
		t:            t,
		expectations: expectations,
	}
}

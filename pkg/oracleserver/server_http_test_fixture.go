package oracleserver

import (
	"net/http"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

// OracleTestURL is the base URL the fixture clients resolve against. Requests
// never leave the process, so the host only has to be well formed.
const OracleTestURL = "http://oracle.test"

// inMemoryOracleTransport hands requests straight to the fiber app.
type inMemoryOracleTransport struct {
	t   *testing.T
	srv *ServerHTTP
}

func (o *inMemoryOracleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	o.t.Helper()
	// -1 disables fiber's test deadline; attestation waits are bounded by the request context.
	return o.srv.app.Test(req, -1)
}

// OracleServerFixture serves the oracle endpoints in memory.
type OracleServerFixture struct {
	t         *testing.T
	transport http.RoundTripper
}

// RoundTripper exposes the in-memory transport so oracle clients under test
// can be pointed at the server.
func (f *OracleServerFixture) RoundTripper() http.RoundTripper {
	return f.transport
}

// Client returns a resty client bound to OracleTestURL that fails the test on
// transport errors.
func (f *OracleServerFixture) Client() *resty.Client {
	f.t.Helper()

	c := resty.New().SetBaseURL(OracleTestURL)
	c.OnError(func(r *resty.Request, err error) {
		require.NoError(f.t, err, "oracle request ended with unexpected transport error")
	})
	c.GetClient().Transport = f.transport

	return c
}

// EventRequest prepares a request against /events/{eventID}/... routes.
func (f *OracleServerFixture) EventRequest(eventID string) *resty.Request {
	f.t.Helper()
	return f.Client().R().SetPathParam("eventID", eventID)
}

// NewServerTestFixture builds the server from opts alone. Without WithOracle the
// oracle routes answer with an internal error.
func NewServerTestFixture(t *testing.T, opts ...ServerOption) *OracleServerFixture {
	return &OracleServerFixture{
		t:         t,
		transport: &inMemoryOracleTransport{t: t, srv: New(opts...)},
	}
}

// NewOracleServerFixture serves o, applying opts after it.
func NewOracleServerFixture(t *testing.T, o oracle.Oracle, opts ...ServerOption) *OracleServerFixture {
	require.NotNil(t, o, "oracle server fixture needs an oracle to serve")
	return NewServerTestFixture(t, append([]ServerOption{WithOracle(o)}, opts...)...)
}

// Package oracleclient implements the oracle collaborator over the oracle HTTP API.
package oracleclient

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/go-resty/resty/v2"
)

var (
	ErrUnexpectedResponse = errors.New("unexpected oracle response")
	ErrUnauthorized       = errors.New("oracle rejected the credentials")
	ErrMalformedResponse  = errors.New("malformed oracle response")
)

// Config holds the settings of the oracle HTTP client.
type Config struct {
	// URL is the base URL of the oracle API.
	URL string `mapstructure:"url"`

	// Timeout bounds every single request.
	Timeout time.Duration `mapstructure:"timeout"`

	// Retries is the number of additional attempts on transport errors and 5xx responses.
	Retries int `mapstructure:"retries"`

	// BearerToken is sent with attestation requests when set.
	BearerToken string `mapstructure:"bearer_token"`

	// PollInterval is how long EventAttestation waits between requests while
	// the event is not attested yet.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// DefaultConfig provides defaults matching a local oracle server.
var DefaultConfig = Config{
	URL:          "http://localhost:3000",
	Timeout:      5 * time.Second,
	Retries:      2,
	PollInterval: time.Second,
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, e.g. with an in-memory one in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.SetTransport(rt) }
}

// Client is an oracle.Oracle talking to a remote oracle server.
type Client struct {
	http         *resty.Client
	pollInterval time.Duration
}

var _ oracle.Oracle = (*Client)(nil)

func New(cfg Config, opts ...Option) *Client {
	h := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.BearerToken != "" {
		h.SetAuthToken(cfg.BearerToken)
	}

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultConfig.PollInterval
	}

	c := &Client{http: h, pollInterval: poll}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Message string `json:"message"`
}

type publicKeyBody struct {
	PublicKey string `json:"publicKey"`
}

type announcementBody struct {
	EventID             string     `json:"eventId"`
	PublicKey           string     `json:"publicKey"`
	PublicNonce         string     `json:"publicNonce"`
	NextAttestationTime *time.Time `json:"nextAttestationTime,omitempty"`
}

type attestationBody struct {
	EventID string `json:"eventId"`
	Outcome uint32 `json:"outcome"`
	Secret  string `json:"secret"`
}

func (c *Client) PublicKey(ctx context.Context) (*btcec.PublicKey, error) {
	var body publicKeyBody
	if err := c.get(ctx, "/api/v1/oracle/publicKey", "", &body); err != nil {
		return nil, err
	}
	return parsePoint("public key", body.PublicKey)
}

func (c *Client) EventAnnouncement(ctx context.Context, eventID string) (oracle.Announcement, error) {
	if eventID == "" {
		return oracle.Announcement{}, fmt.Errorf("%w: empty event id", oracle.ErrUnknownEvent)
	}

	var body announcementBody
	if err := c.get(ctx, "/api/v1/oracle/events/{eventID}/announcement", eventID, &body); err != nil {
		return oracle.Announcement{}, err
	}

	pk, err := parsePoint("public key", body.PublicKey)
	if err != nil {
		return oracle.Announcement{}, err
	}
	nonce, err := parsePoint("public nonce", body.PublicNonce)
	if err != nil {
		return oracle.Announcement{}, err
	}

	ann := oracle.Announcement{PublicKey: pk, PublicNonce: nonce}
	if body.NextAttestationTime != nil {
		ann.NextAttestationTime = *body.NextAttestationTime
	}
	return ann, nil
}

// EventAttestation polls the oracle until the event is attested or ctx is done.
func (c *Client) EventAttestation(ctx context.Context, eventID string) (oracle.Attestation, error) {
	if eventID == "" {
		return oracle.Attestation{}, fmt.Errorf("%w: empty event id", oracle.ErrUnknownEvent)
	}

	for {
		var body attestationBody
		err := c.get(ctx, "/api/v1/oracle/events/{eventID}/attestation", eventID, &body)
		if err == nil {
			return parseAttestation(body)
		}
		if !errors.Is(err, oracle.ErrNotYetAttested) {
			return oracle.Attestation{}, err
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return oracle.Attestation{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) get(ctx context.Context, path, eventID string, result any) error {
	var apiErr errorBody
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if eventID != "" {
		req.SetPathParam("eventID", eventID)
	}

	res, err := req.Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("oracle request %s: %w", path, err)
	}
	if res.IsSuccess() {
		return nil
	}

	switch res.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", oracle.ErrUnknownEvent, apiErr.Message)
	case http.StatusTooEarly:
		return fmt.Errorf("%w: %s", oracle.ErrNotYetAttested, apiErr.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, res.StatusCode(), apiErr.Message)
	}
}

func parsePoint(field, s string) (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, field, err)
	}
	pk, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, field, err)
	}
	return pk, nil
}

func parseAttestation(body attestationBody) (oracle.Attestation, error) {
	b, err := hex.DecodeString(body.Secret)
	if err != nil {
		return oracle.Attestation{}, fmt.Errorf("%w: secret: %w", ErrMalformedResponse, err)
	}
	if len(b) != 32 {
		return oracle.Attestation{}, fmt.Errorf("%w: secret has %d bytes", ErrMalformedResponse, len(b))
	}

	var secret btcec.ModNScalar
	if overflow := secret.SetByteSlice(b); overflow {
		return oracle.Attestation{}, fmt.Errorf("%w: secret exceeds the group order", ErrMalformedResponse)
	}
	return oracle.Attestation{Outcome: body.Outcome, Secret: &secret}, nil
}

package oracleserver

import (
	"context"
	"fmt"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/adapters"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/middleware"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver/internal/ports/openapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

// Config holds the configuration settings for the oracle HTTP server.
type Config struct {
	// AppName is the name of the application.
	AppName string `mapstructure:"app_name"`

	// Port is the TCP port on which the server will listen.
	Port int `mapstructure:"port"`

	// Addr is the address the server will bind to.
	Addr string `mapstructure:"addr"`

	// ServerHeader is the value of the Server header returned in HTTP responses.
	ServerHeader string `mapstructure:"server_header"`

	// BearerToken protects the attestation endpoint. Empty leaves it open.
	BearerToken string `mapstructure:"bearer_token"`

	// ConnectionReadTimeout defines the maximum duration an active connection is allowed to stay open.
	// Once this threshold is exceeded, the connection will be forcefully closed.
	ConnectionReadTimeout time.Duration `mapstructure:"connection_read_timeout_limit"`

	// EnablePprof exposes the pprof endpoints.
	EnablePprof bool `mapstructure:"enable_pprof"`
}

// DefaultConfig provides a default configuration with reasonable values for local development.
var DefaultConfig = Config{
	AppName:               "DLC Oracle API v0.0.0",
	Port:                  3000,
	Addr:                  "localhost",
	ServerHeader:          "DLC Oracle API",
	BearerToken:           "",
	ConnectionReadTimeout: 10 * time.Second,
	EnablePprof:           false,
}

// ServerOption defines a functional option for configuring an HTTP server.
type ServerOption func(*ServerHTTP)

// WithMiddleware adds a Fiber middleware handler to the HTTP server configuration.
func WithMiddleware(f fiber.Handler) ServerOption {
	return func(s *ServerHTTP) {
		s.middleware = append(s.middleware, f)
	}
}

// WithOracle sets the oracle whose announcements and attestations the server exposes.
func WithOracle(o oracle.Oracle) ServerOption {
	return func(s *ServerHTTP) {
		s.oracle = o
	}
}

// WithBearerToken sets the token required by the attestation endpoint.
func WithBearerToken(token string) ServerOption {
	return func(s *ServerHTTP) {
		s.cfg.BearerToken = token
	}
}

// WithConfig sets the configuration for the HTTP server using the provided Config.
// It initializes a new Fiber application with the specified server settings.
func WithConfig(cfg Config) ServerOption {
	return func(s *ServerHTTP) {
		s.cfg = cfg
		s.app = newFiberApp(cfg)
	}
}

// ServerHTTP represents the HTTP server instance, including configuration,
// Fiber app instance, middleware stack and the oracle served.
type ServerHTTP struct {
	cfg        Config          // cfg holds the server configuration settings.
	app        *fiber.App      // app is the Fiber application instance serving HTTP requests.
	middleware []fiber.Handler // middleware is a list of Fiber middleware functions to be applied globally.
	oracle     ports.OracleProvider
}

// SocketAddr builds the address string for binding.
func (s *ServerHTTP) SocketAddr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Addr, s.cfg.Port)
}

// ListenAndServe starts the HTTP server and begins listening on the configured socket address.
// It blocks until the server is stopped or an error occurs.
func (s *ServerHTTP) ListenAndServe(ctx context.Context) error {
	return s.app.Listen(s.SocketAddr())
}

// Shutdown gracefully shuts down the HTTP server using the provided context,
// allowing ongoing requests to complete within the context's deadline.
func (s *ServerHTTP) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// New creates and configures a new instance of ServerHTTP.
// It registers the oracle API handlers over the configured oracle, the
// middleware stack and the metrics endpoint, applying opts first.
func New(opts ...ServerOption) *ServerHTTP {
	srv := &ServerHTTP{
		cfg:    DefaultConfig,
		app:    newFiberApp(DefaultConfig),
		oracle: adapters.NewUnavailableOracleProvider(),
	}

	for _, o := range opts {
		o(srv)
	}

	for _, m := range srv.middleware {
		srv.app.Use(m)
	}

	registry := ports.NewHandlerRegistryService(srv.oracle)
	openapi.RegisterHandlersWithOptions(srv.app, registry, openapi.FiberServerOptions{
		HandlerMiddleware: []fiber.Handler{
			middleware.AttestationAuthMiddleware(srv.cfg.BearerToken),
		},
		GlobalMiddleware: middleware.BasicMiddlewareGroup(middleware.BasicMiddlewareGroupConfig{
			EnableStackTrace: true,
			EnablePprof:      srv.cfg.EnablePprof,
		}),
	})

	srv.app.Get("/metrics", monitor.New(monitor.Config{Title: "DLC Oracle API"}))

	return srv
}

// newFiberApp creates and returns a new instance of a fiber.App with the provided configuration.
// The app is configured with case-sensitive routing, strict routing, custom server headers and read timeout settings.
func newFiberApp(cfg Config) *fiber.App {
	return fiber.New(fiber.Config{
		CaseSensitive:         true,
		StrictRouting:         true,
		ServerHeader:          cfg.ServerHeader,
		AppName:               cfg.AppName,
		ReadTimeout:           cfg.ConnectionReadTimeout,
		ErrorHandler:          ports.ErrorHandler(),
		DisableStartupMessage: true,
	})
}

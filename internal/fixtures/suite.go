// Package fixtures builds the shared setup for auth API tests: one set of
// clients per test run plus random user data per test.
package fixtures

import (
	"context"
	"fmt"

	"github.com/samvad-hq/authprobe/internal/config"
	"github.com/samvad-hq/authprobe/internal/logger"
	"github.com/samvad-hq/authprobe/pkg/authapi"
	"github.com/samvad-hq/authprobe/pkg/httpclient"
	"github.com/samvad-hq/authprobe/pkg/report"
	"github.com/samvad-hq/authprobe/pkg/typedclient"
)

// Suite holds the clients for one test run. Build it once and Close it at the end.
type Suite struct {
	BaseURL   string
	Transport *httpclient.JSONClient
	Typed     *typedclient.Client
	Auth      *authapi.Client
	Data      *Generator
}

// Options control how a Suite is built.
type Options struct {
	BaseURL string
	// Lenient accepts response fields the models do not declare.
	Lenient bool
	Log     logger.Logger
	Sink    report.Sink
	Seed    uint64
}

// OptionsFromConfig maps runtime configuration onto suite options.
func OptionsFromConfig(cfg *config.Config, log logger.Logger, sink report.Sink) Options {
	return Options{
		BaseURL: cfg.AuthBaseURL,
		Lenient: !cfg.StrictResponses,
		Log:     log,
		Sink:    sink,
	}
}

// NewSuite wires transport, typed and reporting clients against opts.BaseURL.
func NewSuite(opts Options) (*Suite, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url must not be empty")
	}
	if opts.Log == nil {
		opts.Log = logger.NopLogger{}
	}

	transport := httpclient.NewJSONClient(opts.BaseURL, httpclient.WithLogger(opts.Log))

	var typedOpts []typedclient.Option
	if opts.Lenient {
		typedOpts = append(typedOpts, typedclient.WithLenientDecoding())
	}
	typed := typedclient.New(transport, typedOpts...)

	return &Suite{
		BaseURL:   transport.BaseURL(),
		Transport: transport,
		Typed:     typed,
		Auth:      authapi.NewClient(typed, opts.Sink),
		Data:      NewGenerator(opts.Seed),
	}, nil
}

// WithSink returns a reporting client sharing this suite's session but writing to sink.
func (s *Suite) WithSink(sink report.Sink) *authapi.Client {
	return authapi.NewClient(s.Typed, sink)
}

// Close releases the shared connection session.
func (s *Suite) Close() {
	if s == nil || s.Transport == nil {
		return
	}
	s.Transport.Close()
}

// RegisteredUser pairs a registered account with the credentials used to create it.
type RegisteredUser struct {
	Info        authapi.UserResponse
	Credentials authapi.RegistrationRequest
}

// RegisterUser registers a freshly generated user.
func (s *Suite) RegisterUser(ctx context.Context) (RegisteredUser, error) {
	creds := s.Data.Registration()
	info, err := s.Auth.Register(ctx, creds)
	if err != nil {
		return RegisteredUser{}, fmt.Errorf("register fixture user: %w", err)
	}
	return RegisteredUser{Info: info, Credentials: creds}, nil
}

package fixtures

import (
	"context"
	"strings"
	"testing"

	"github.com/samvad-hq/authprobe/internal/authtest"
	"github.com/samvad-hq/authprobe/internal/config"
)

func TestGeneratorProducesValidRegistration(t *testing.T) {
	g := NewGenerator(42)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r := g.Registration()
		if err := r.Validate(); err != nil {
			t.Fatalf("generated request is invalid: %v", err)
		}
		if len(r.Password) != passwordLength {
			t.Fatalf("password length = %d", len(r.Password))
		}
		if !strings.Contains(r.Email, "@") {
			t.Fatalf("email without @: %q", r.Email)
		}
		if strings.ContainsAny(r.Username, " ") {
			t.Fatalf("username contains spaces: %q", r.Username)
		}
		seen[r.Username] = true
	}
	if len(seen) < 45 {
		t.Fatalf("usernames collide too often: %d unique of 50", len(seen))
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	a := NewGenerator(7).Registration()
	b := NewGenerator(7).Registration()
	if a != b {
		t.Fatalf("expected same data for same seed: %+v vs %+v", a, b)
	}
}

func TestSuiteRegisterUser(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()

	suite, err := NewSuite(Options{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewSuite: %v", err)
	}
	defer suite.Close()

	if suite.BaseURL != srv.URL {
		t.Fatalf("BaseURL = %q, want %q", suite.BaseURL, srv.URL)
	}

	user, err := suite.RegisterUser(context.Background())
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Info.Username != user.Credentials.Username || user.Info.Email != user.Credentials.Email {
		t.Fatalf("registration echo mismatch: %+v vs %+v", user.Info, user.Credentials)
	}
}

func TestNewSuiteRequiresBaseURL(t *testing.T) {
	if _, err := NewSuite(Options{}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(&config.Config{AuthBaseURL: "http://x", StrictResponses: false}, nil, nil)
	if opts.BaseURL != "http://x" || !opts.Lenient {
		t.Fatalf("unexpected options %+v", opts)
	}
}

package config

import (
	"testing"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/httpclient"
)

func clearKibanaEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"KIBANA_URL", "KIBANA_USERNAME", "KIBANA_PASSWORD", "KIBANA_APIKEY", "KIBANA_MAX_REQUESTS"} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresURL(t *testing.T) {
	clearKibanaEnv(t)
	t.Setenv("KIBANA_APIKEY", "k")

	_, err := Load("")
	if _, ok := cliutil.IsUserError(err); !ok {
		t.Fatalf("expected a UserError, got %v", err)
	}
}

func TestLoadRejectsAmbiguousAuth(t *testing.T) {
	clearKibanaEnv(t)
	t.Setenv("KIBANA_URL", "https://kibana.example.com")
	t.Setenv("KIBANA_USERNAME", "u")
	t.Setenv("KIBANA_PASSWORD", "p")
	t.Setenv("KIBANA_APIKEY", "k")

	_, err := Load("")
	if _, ok := cliutil.IsUserError(err); !ok {
		t.Fatalf("expected a UserError for ambiguous auth, got %v", err)
	}
}

func TestLoadResolvesBasicAuth(t *testing.T) {
	clearKibanaEnv(t)
	t.Setenv("KIBANA_URL", "https://kibana.example.com")
	t.Setenv("KIBANA_USERNAME", "u")
	t.Setenv("KIBANA_PASSWORD", "p")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cfg.Auth.(httpclient.BasicAuth); !ok {
		t.Errorf("Auth = %T, want httpclient.BasicAuth", cfg.Auth)
	}
	if cfg.MaxInflight != 8 {
		t.Errorf("MaxInflight = %d, want spec.md's default of 8", cfg.MaxInflight)
	}
}

func TestLoadResolvesAPIKeyAuthAndMaxRequests(t *testing.T) {
	clearKibanaEnv(t)
	t.Setenv("KIBANA_URL", "https://kibana.example.com")
	t.Setenv("KIBANA_APIKEY", "k")
	t.Setenv("KIBANA_MAX_REQUESTS", "20")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cfg.Auth.(httpclient.APIKeyAuth); !ok {
		t.Errorf("Auth = %T, want httpclient.APIKeyAuth", cfg.Auth)
	}
	if cfg.MaxInflight != 20 {
		t.Errorf("MaxInflight = %d, want 20", cfg.MaxInflight)
	}
}

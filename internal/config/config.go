// Package config resolves the environment-variable configuration spec.md
// §6 names: the Server base URL, exactly one authentication mode, and the
// optional inflight-request cap. It is the one place that translates raw
// environment strings into the typed httpclient.Auth union the core
// expects.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/httpclient"
)

// Config is the resolved, validated environment configuration for one
// invocation.
type Config struct {
	URL         string
	Auth        httpclient.Auth
	MaxInflight int
}

// Load reads envFile (if non-empty) into the process environment without
// overriding anything already set, then resolves KIBANA_URL and exactly one
// of KIBANA_USERNAME+KIBANA_PASSWORD or KIBANA_APIKEY, plus the optional
// KIBANA_MAX_REQUESTS cap (spec.md §6).
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, cliutil.WrapUserError(fmt.Sprintf("could not read env file %q", envFile), err)
		}
	}

	url := os.Getenv("KIBANA_URL")
	if url == "" {
		return nil, cliutil.NewUserErrorWithHint(
			"KIBANA_URL is not set",
			"set KIBANA_URL to the base URL of your Kibana instance, e.g. https://kibana.example.com",
		)
	}

	auth, err := resolveAuth()
	if err != nil {
		return nil, err
	}

	maxInflight := httpclient.DefaultMaxInflight
	if raw := os.Getenv("KIBANA_MAX_REQUESTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, cliutil.NewUserError(fmt.Sprintf("KIBANA_MAX_REQUESTS must be a positive integer, got %q", raw))
		}
		maxInflight = n
	}

	return &Config{URL: url, Auth: auth, MaxInflight: maxInflight}, nil
}

func resolveAuth() (httpclient.Auth, error) {
	user, pass := os.Getenv("KIBANA_USERNAME"), os.Getenv("KIBANA_PASSWORD")
	apiKey := os.Getenv("KIBANA_APIKEY")

	basicSet := user != "" || pass != ""
	apiKeySet := apiKey != ""

	switch {
	case basicSet && apiKeySet:
		return nil, cliutil.NewUserErrorWithHint(
			"ambiguous authentication: both KIBANA_USERNAME/KIBANA_PASSWORD and KIBANA_APIKEY are set",
			"set exactly one of the two authentication modes",
		)
	case basicSet:
		if user == "" || pass == "" {
			return nil, cliutil.NewUserError("both KIBANA_USERNAME and KIBANA_PASSWORD must be set together")
		}
		return httpclient.BasicAuth{Username: user, Password: pass}, nil
	case apiKeySet:
		return httpclient.APIKeyAuth{Key: apiKey}, nil
	default:
		return nil, cliutil.NewUserErrorWithHint(
			"no authentication configured",
			"set KIBANA_USERNAME and KIBANA_PASSWORD, or KIBANA_APIKEY",
		)
	}
}

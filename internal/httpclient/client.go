// Package httpclient implements the namespace-aware Server HTTP client
// core described in spec.md §4.1: a single global inflight-request bound
// shared by every namespace-scoped sub-client, a one-shot version probe at
// construction time, and the capability gate that the orchestrator consults
// before dispatching a family.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"k8s.io/klog/v2"

	"go.datum.net/kibanasync/internal/manifest"
	"go.datum.net/kibanasync/internal/version"
)

// DefaultMaxInflight is used when the caller does not set
// KIBANA_MAX_REQUESTS.
const DefaultMaxInflight = 8

// Client is a connected, version-probed handle to one Server instance. It
// owns the process-wide inflight semaphore that every namespace-scoped
// SpaceClient shares (spec.md §5: "a single global cap, not one per
// space").
type Client struct {
	baseURL    *url.URL
	auth       Auth
	registry   *manifest.Registry
	httpClient *http.Client
	sem        *semaphore.Weighted
	serverVer  version.ServerVersion
	maxInflight int
}

// Connect builds a Client: it loads the project's spaces.yml into a
// namespace registry (absent manifest ⇒ {default -> "Default"}), then
// performs a single status probe to learn the Server version. maxInflight
// <= 0 falls back to DefaultMaxInflight.
func Connect(ctx context.Context, baseURL string, auth Auth, projectDir string, maxInflight int) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid base url %q: %w", baseURL, err)
	}
	spacesManifest, err := manifest.LoadSpacesManifest(projectDir)
	if err != nil {
		return nil, fmt.Errorf("httpclient: load spaces manifest: %w", err)
	}
	if maxInflight <= 0 {
		maxInflight = DefaultMaxInflight
	}
	c := &Client{
		baseURL:    u,
		auth:       auth,
		registry:   manifest.NewRegistry(spacesManifest),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		sem:         semaphore.NewWeighted(int64(maxInflight)),
		maxInflight: maxInflight,
	}
	ver, err := c.probeVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("httpclient: version probe: %w", err)
	}
	c.serverVer = ver
	klog.V(1).Infof("connected to %s, server version %s", u, ver)
	return c, nil
}

type statusResponse struct {
	Version struct {
		Number string `json:"number"`
	} `json:"version"`
}

func (c *Client) probeVersion(ctx context.Context) (version.ServerVersion, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/status", nil, false)
	if err != nil {
		return version.ServerVersion{}, err
	}
	var status statusResponse
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return version.ServerVersion{}, fmt.Errorf("parse status response: %w", err)
	}
	return version.Parse(status.Version.Number)
}

// ServerVersion returns the version learned at Connect time.
func (c *Client) ServerVersion() version.ServerVersion { return c.serverVer }

// Registry returns the namespace registry loaded from spaces.yml.
func (c *Client) Registry() *manifest.Registry { return c.registry }

// MaxInflight returns the configured semaphore capacity, used to size the
// pipeline kernel's worker pool so it never oversubscribes the HTTP
// client's own backpressure source.
func (c *Client) MaxInflight() int { return c.maxInflight }

// Supports reports whether the connected Server version supports family f,
// per the capability matrix in internal/version.
func (c *Client) Supports(f version.Family) bool {
	return version.IsSupported(f, c.serverVer)
}

// Space binds a namespace-scoped view of this client. id must be a known
// entry of the namespace registry.
func (c *Client) Space(id string) (*SpaceClient, error) {
	if !c.registry.Has(id) {
		return nil, fmt.Errorf("httpclient: unknown space %q", id)
	}
	return &SpaceClient{client: c, spaceID: id}, nil
}

// SpaceClient is a Client bound to one namespace. Every request issued
// through it has the namespace's /s/<id> path prefix injected at most
// once, per spec.md §4.1 ("the default space carries no prefix").
type SpaceClient struct {
	client  *Client
	spaceID string
}

// SpaceID returns the bound namespace id.
func (s *SpaceClient) SpaceID() string { return s.spaceID }

// ServerVersion delegates to the parent Client.
func (s *SpaceClient) ServerVersion() version.ServerVersion { return s.client.ServerVersion() }

// Supports delegates to the parent Client.
func (s *SpaceClient) Supports(f version.Family) bool { return s.client.Supports(f) }

func (s *SpaceClient) namespacedPath(path string) string {
	if s.spaceID == manifest.DefaultSpaceID || strings.HasPrefix(path, "/s/") {
		return path
	}
	return "/s/" + s.spaceID + path
}

// Request issues one HTTP call scoped to this namespace.
func (s *SpaceClient) Request(ctx context.Context, method, path string, body []byte, internal bool) (*Response, error) {
	return s.client.request(ctx, method, s.namespacedPath(path), body, internal)
}

// RequestWithContentType is Request with an explicit Content-Type, for
// callers (the saved-objects multipart importer) that can't use the
// default application/json.
func (s *SpaceClient) RequestWithContentType(ctx context.Context, method, path string, body []byte, contentType string, internal bool) (*Response, error) {
	return s.client.requestWithContentType(ctx, method, s.namespacedPath(path), body, contentType, internal)
}

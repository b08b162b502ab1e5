package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func statusServer(t *testing.T, version string, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":{"number":"` + version + `"}}`))
	})
	if handler != nil {
		mux.HandleFunc("/", handler)
	}
	return httptest.NewServer(mux)
}

func TestConnectProbesVersionAndDefaultsRegistry(t *testing.T) {
	srv := statusServer(t, "9.3.0", nil)
	defer srv.Close()

	dir := t.TempDir()
	c, err := Connect(context.Background(), srv.URL, BasicAuth{Username: "u", Password: "p"}, dir, 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if c.ServerVersion().String() != "9.3.0" {
		t.Errorf("ServerVersion = %s, want 9.3.0", c.ServerVersion())
	}
	if !c.Registry().Has("default") {
		t.Error("expected default space in registry when spaces.yml is absent")
	}
}

func TestConnectDefaultsMaxInflightToEight(t *testing.T) {
	srv := statusServer(t, "9.3.0", nil)
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{Username: "u", Password: "p"}, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if c.MaxInflight() != 8 {
		t.Errorf("MaxInflight() = %d, want 8 (spec.md default for KIBANA_MAX_REQUESTS)", c.MaxInflight())
	}
}

func TestSpaceNamespacesPathExactlyOnce(t *testing.T) {
	var gotPath string
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "spaces.yml"), []byte("spaces:\n  - id: marketing\n    name: Marketing\n"), 0o644)

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, dir, 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, err := c.Space("marketing")
	if err != nil {
		t.Fatalf("Space: %v", err)
	}
	if _, err := sc.Request(context.Background(), http.MethodGet, "/api/saved_objects/_find", nil, false); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if gotPath != "/s/marketing/api/saved_objects/_find" {
		t.Errorf("path = %q, want /s/marketing prefix exactly once", gotPath)
	}
}

func TestDefaultSpaceCarriesNoPrefix(t *testing.T) {
	var gotPath string
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, _ := c.Space("default")
	sc.Request(context.Background(), http.MethodGet, "/api/saved_objects/_find", nil, false)
	if gotPath != "/api/saved_objects/_find" {
		t.Errorf("path = %q, want no /s/ prefix for default space", gotPath)
	}
}

func TestInternalOriginHeaderSetWhenRequested(t *testing.T) {
	var gotHeader string
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Elastic-Internal-Origin")
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, _ := c.Space("default")
	sc.Request(context.Background(), http.MethodPost, "/api/workflows", nil, true)
	if gotHeader != "Kibana" {
		t.Errorf("X-Elastic-Internal-Origin = %q, want Kibana", gotHeader)
	}
}

func TestRetriesOnceOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, _ := c.Space("default")
	if _, err := sc.Request(context.Background(), http.MethodGet, "/api/x", nil, false); err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls)
	}
}

func TestDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, _ := c.Space("default")
	_, err = sc.Request(context.Background(), http.MethodGet, "/api/x", nil, false)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 HttpError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestInflightSemaphoreBoundsConcurrency(t *testing.T) {
	const maxInflight = 2
	var inflight, maxSeen int32
	release := make(chan struct{})
	srv := statusServer(t, "9.3.0", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inflight, -1)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	c, err := Connect(context.Background(), srv.URL, BasicAuth{"u", "p"}, t.TempDir(), maxInflight)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, _ := c.Space("default")

	const requests = 6
	done := make(chan struct{}, requests)
	for i := 0; i < requests; i++ {
		go func() {
			sc.Request(context.Background(), http.MethodGet, "/api/x", nil, false)
			done <- struct{}{}
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	for i := 0; i < requests; i++ {
		<-done
	}
	if maxSeen > maxInflight {
		t.Errorf("observed %d concurrent requests, want <= %d", maxSeen, maxInflight)
	}
}

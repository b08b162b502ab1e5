package orchestrator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/version"
)

func newTestOrchestrator(t *testing.T, serverVersion string, mux *http.ServeMux, spacesYML string) (*Orchestrator, string) {
	t.Helper()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":{"number":"` + serverVersion + `"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	if spacesYML != "" {
		if err := os.WriteFile(filepath.Join(dir, "spaces.yml"), []byte(spacesYML), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := httpclient.Connect(context.Background(), srv.URL, httpclient.BasicAuth{Username: "u", Password: "p"}, dir, 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return New(c, dir), dir
}

// TestPullSavedObjectsExportsAndRecordsVersion mirrors scenario S1.
func TestPullSavedObjectsExportsAndRecordsVersion(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/saved_objects/_export", func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"type":"dashboard","id":"abc","attributes":{"title":"x"},"updated_at":"2024-01-01","version":"1"}` + "\n"))
	})
	o, dir := newTestOrchestrator(t, "8.5.0", mux, "")

	manifestDir := filepath.Join(dir, "default", "manifest")
	if err := os.MkdirAll(manifestDir, 0o755); err != nil {
		t.Fatal(err)
	}
	soManifest := `{"objects":[{"type":"dashboard","id":"abc"}],"excludeExportDetails":true,"includeReferencesDeep":true}`
	if err := os.WriteFile(filepath.Join(manifestDir, "saved_objects.json"), []byte(soManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := o.Pull(context.Background(), PullOptions{Families: []version.Family{version.FamilySavedObjects}})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if len(summary.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", summary.Failures)
	}
	for _, want := range []string{`"type":"dashboard"`, `"id":"abc"`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("export request missing %q: %s", want, gotBody)
		}
	}

	written, err := os.ReadFile(filepath.Join(dir, "default", "objects", "dashboard", "abc.json"))
	if err != nil {
		t.Fatalf("read written object: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(written, &decoded); err != nil {
		t.Fatalf("decode written object: %v", err)
	}
	if _, ok := decoded["updated_at"]; ok {
		t.Error("updated_at should be stripped from the on-disk record")
	}
	if _, ok := decoded["version"]; ok {
		t.Error("version should be stripped from the on-disk record")
	}

	spacesYML, err := os.ReadFile(filepath.Join(dir, "spaces.yml"))
	if err != nil {
		t.Fatalf("read spaces.yml: %v", err)
	}
	if !strings.Contains(string(spacesYML), "8.5.0") {
		t.Errorf("spaces.yml missing recorded version 8.5.0: %s", spacesYML)
	}
}

// TestPushAbortsOnIncompatibleFloor mirrors scenario S3.
func TestPushAbortsOnIncompatibleFloor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call %s %s: push should abort before any mutation", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
	o, _ := newTestOrchestrator(t, "9.2.7", mux, "spaces:\n  - id: default\n    name: Default\nkibana:\n  version: \"9.3.2\"\n")

	summary, err := o.Push(context.Background(), PushOptions{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if summary.ExitStatus() != ExitWarning {
		t.Errorf("ExitStatus = %v, want ExitWarning", summary.ExitStatus())
	}
	if len(summary.Warnings) == 0 {
		t.Error("expected a push-floor warning")
	}
	if summary.Created != 0 || summary.Updated != 0 {
		t.Error("push should not have mutated anything")
	}
}

// TestPushForceBypassesUnsupportedFamily mirrors scenario S4.
func TestPushForceBypassesUnsupportedFamily(t *testing.T) {
	mux := http.NewServeMux()
	o, _ := newTestOrchestrator(t, "8.5.0", mux, "")

	summary, err := o.Push(context.Background(), PushOptions{Families: []version.Family{version.FamilyWorkflows}, Force: true})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if summary.ExitStatus() != ExitWarning {
		t.Errorf("ExitStatus = %v, want ExitWarning", summary.ExitStatus())
	}
	foundForceWarning := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "forced past unsupported-version gate") {
			foundForceWarning = true
		}
	}
	if !foundForceWarning {
		t.Errorf("expected a forced-past-gate warning, got %v", summary.Warnings)
	}
}

// TestAddDependencyClosureIsIdempotent mirrors scenario S5.
func TestAddDependencyClosureIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent_builder/agents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"agents":[{"id":"A","name":"A","configuration":{"tools":["T"]}}]}`))
	})
	mux.HandleFunc("/api/agent_builder/tools", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tools":[{"id":"T","name":"T","configuration":{"workflow_id":"W"}}]}`))
	})
	mux.HandleFunc("/api/workflows/W", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"W","name":"W","enabled":true}`))
	})
	o, dir := newTestOrchestrator(t, "9.3.0", mux, "")

	summary, err := o.Add(context.Background(), AddOptions{Space: "default", Family: version.FamilyAgents, Selectors: []string{"A"}, IncludeDeps: true})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if summary.Added != 3 {
		t.Fatalf("Added = %d, want 3 (agent, tool, workflow)", summary.Added)
	}
	for _, path := range []string{
		filepath.Join(dir, "default", "agents", "A.json"),
		filepath.Join(dir, "default", "tools", "T.json"),
		filepath.Join(dir, "default", "workflows", "W.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}
	for _, path := range []string{
		filepath.Join(dir, "default", "manifest", "agents.yml"),
		filepath.Join(dir, "default", "manifest", "tools.yml"),
		filepath.Join(dir, "default", "manifest", "workflows.yml"),
	} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if len(data) == 0 {
			t.Errorf("%s should not be empty", path)
		}
	}

	// Re-running must be a no-op (spec.md §8 property 7).
	summary2, err := o.Add(context.Background(), AddOptions{Space: "default", Family: version.FamilyAgents, Selectors: []string{"A"}, IncludeDeps: true})
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if summary2.Added != 0 {
		t.Errorf("second Add.Added = %d, want 0 (idempotent)", summary2.Added)
	}
}

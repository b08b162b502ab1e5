package families

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.datum.net/kibanasync/internal/codec"
	"go.datum.net/kibanasync/internal/httpclient"
	"go.datum.net/kibanasync/internal/manifest"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *httpclient.SpaceClient {
	t.Helper()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":{"number":"9.3.0"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := httpclient.Connect(context.Background(), srv.URL, httpclient.BasicAuth{Username: "u", Password: "p"}, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc, err := c.Space("default")
	if err != nil {
		t.Fatalf("Space: %v", err)
	}
	return sc
}

// TestAgentPushCreateOnNotFound mirrors scenario S2: a HEAD 404 drives a
// POST create that strips readonly and schema, retaining configuration.
func TestAgentPushCreateOnNotFound(t *testing.T) {
	var gotMethodSeq []string
	var createBody map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent_builder/agents/a1", func(w http.ResponseWriter, r *http.Request) {
		gotMethodSeq = append(gotMethodSeq, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/api/agent_builder/agents", func(w http.ResponseWriter, r *http.Request) {
		gotMethodSeq = append(gotMethodSeq, r.Method)
		json.NewDecoder(r.Body).Decode(&createBody)
		w.WriteHeader(http.StatusOK)
	})
	sc := newTestClient(t, mux)

	n, err := codec.Decode([]byte(`{"id":"a1","name":"A","readonly":true,"schema":{"x":1},"configuration":{"tools":["t1"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := AgentAdapter{}.Push(context.Background(), sc, n)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if outcome != Created {
		t.Errorf("outcome = %v, want Created", outcome)
	}
	if len(gotMethodSeq) != 2 || gotMethodSeq[0] != http.MethodHead || gotMethodSeq[1] != http.MethodPost {
		t.Fatalf("method sequence = %v, want [HEAD POST]", gotMethodSeq)
	}
	if _, ok := createBody["readonly"]; ok {
		t.Error("readonly should be stripped from create body")
	}
	if _, ok := createBody["schema"]; ok {
		t.Error("schema should be stripped from create body")
	}
	if createBody["id"] != "a1" {
		t.Error("id should be present in create body")
	}
}

func TestAgentPushUpdateStripsID(t *testing.T) {
	var updateBody map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent_builder/agents/a1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewDecoder(r.Body).Decode(&updateBody)
		w.WriteHeader(http.StatusOK)
	})
	sc := newTestClient(t, mux)

	n, _ := codec.Decode([]byte(`{"id":"a1","name":"A","readonly":true,"schema":{}}`))
	outcome, err := AgentAdapter{}.Push(context.Background(), sc, n)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if outcome != Updated {
		t.Errorf("outcome = %v, want Updated", outcome)
	}
	if _, ok := updateBody["id"]; ok {
		t.Error("id should be stripped from update body")
	}
}

func TestCreateRaceFallsBackToUpdateOn409(t *testing.T) {
	var seq []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workflows/w1", func(w http.ResponseWriter, r *http.Request) {
		seq = append(seq, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/workflows", func(w http.ResponseWriter, r *http.Request) {
		seq = append(seq, r.Method)
		w.WriteHeader(http.StatusConflict)
	})
	sc := newTestClient(t, mux)

	n, _ := codec.Decode([]byte(`{"id":"w1","name":"W","enabled":true}`))
	outcome, err := WorkflowAdapter{}.Push(context.Background(), sc, n)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if outcome != Updated {
		t.Errorf("outcome = %v, want Updated (409 race recovery)", outcome)
	}
	if len(seq) != 3 || seq[0] != http.MethodHead || seq[1] != http.MethodPost || seq[2] != http.MethodPut {
		t.Fatalf("method sequence = %v, want [HEAD POST PUT]", seq)
	}
}

// TestSavedObjectsExportRequestShape mirrors scenario S1.
func TestSavedObjectsExportRequestShape(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/saved_objects/_export", func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"abc","type":"dashboard","attributes":{"title":"x"},"updated_at":"2024-01-01","version":"1"}` + "\n"))
	})
	sc := newTestClient(t, mux)

	m := &manifest.SavedObjectsManifest{
		Objects:               []manifest.ObjectRef{{Type: "dashboard", ID: "abc"}},
		ExcludeExportDetails:  true,
		IncludeReferencesDeep: true,
	}
	records, err := SavedObjectsAdapter{}.Export(context.Background(), sc, m)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	for _, want := range []string{`"type":"dashboard"`, `"id":"abc"`, `"excludeExportDetails":true`, `"includeReferencesDeep":true`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("export request body missing %q: %s", want, gotBody)
		}
	}

	dropped := SavedObjectsAdapter{}.DropOnPull(records[0])
	if _, ok := dropped.Get("updated_at"); ok {
		t.Error("updated_at should be dropped")
	}
	if _, ok := dropped.Get("version"); ok {
		t.Error("version should be dropped")
	}
}

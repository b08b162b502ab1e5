package output

import (
	"bytes"
	"strings"
	"testing"
)

type testRecord struct {
	Space string `json:"space" yaml:"space"`
	Key   string `json:"key" yaml:"key"`
}

func TestCLIPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	rec := testRecord{Space: "default", Key: "agents/A"}

	if err := CLIPrint(&buf, "yaml", rec, nil, nil); err != nil {
		t.Fatalf("CLIPrint: %v", err)
	}
	want := "space: default\nkey: agents/A\n"
	if buf.String() != want {
		t.Errorf("CLIPrint(yaml) = %q, want %q", buf.String(), want)
	}
}

func TestCLIPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	rec := testRecord{Space: "default", Key: "agents/A"}

	if err := CLIPrint(&buf, "json", rec, nil, nil); err != nil {
		t.Fatalf("CLIPrint: %v", err)
	}
	want := "{\n  \"space\": \"default\",\n  \"key\": \"agents/A\"\n}"
	if buf.String() != want {
		t.Errorf("CLIPrint(json) = %q, want %q", buf.String(), want)
	}
}

func TestCLIPrintTable(t *testing.T) {
	var buf bytes.Buffer
	headers := []any{"SPACE", "FAMILY", "KEY"}
	rows := [][]any{
		{"default", "agents", "A"},
		{"default", "tools", "T"},
	}

	if err := CLIPrint(&buf, "table", nil, headers, rows); err != nil {
		t.Fatalf("CLIPrint: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"SPACE", "FAMILY", "KEY", "agents", "tools"} {
		if !strings.Contains(out, want) {
			t.Errorf("CLIPrint(table) output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIPrintTableRequiresHeadersAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := CLIPrint(&buf, "table", nil, nil, nil); err == nil {
		t.Error("CLIPrint(table) with nil headers/rowData: want error, got nil")
	}
}

func TestCLIPrintUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CLIPrint(&buf, "xml", testRecord{}, nil, nil); err == nil {
		t.Error("CLIPrint(xml): want error, got nil")
	}
}

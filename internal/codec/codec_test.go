package codec

import (
	"strings"
	"testing"
)

func TestDecodePreservesKeyOrder(t *testing.T) {
	src := `{"zeta": 1, "alpha": 2, "middle": {"b": 1, "a": 2}}`
	n, err := Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Keys; got[0] != "zeta" || got[1] != "alpha" || got[2] != "middle" {
		t.Fatalf("key order not preserved: %v", got)
	}
	inner, _ := n.Get("middle")
	if inner.Keys[0] != "b" || inner.Keys[1] != "a" {
		t.Fatalf("nested key order not preserved: %v", inner.Keys)
	}
}

func TestDecodeStripsCommentsAndTrailingCommas(t *testing.T) {
	src := `{
		// a line comment
		"a": 1, /* inline block comment */
		"b": [1, 2, 3,],
	}`
	n, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, _ := n.Get("a")
	if a.Num.String() != "1" {
		t.Errorf("a = %v, want 1", a.Num)
	}
	b, _ := n.Get("b")
	if len(b.Items) != 3 {
		t.Errorf("b has %d items, want 3 (trailing comma not stripped)", len(b.Items))
	}
}

func TestTripleQuotedRoundTrip(t *testing.T) {
	src := `{"query": """FROM idx
| WHERE x == \"a\""""}`
	n, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	q, ok := n.Get("query")
	if !ok || q.Kind != KindString {
		t.Fatalf("query missing or not a string: %+v", q)
	}
	want := "FROM idx\n| WHERE x == \"a\""
	if q.Str != want {
		t.Fatalf("decoded query = %q, want %q", q.Str, want)
	}

	out := Encode(n, NewMultilinePaths("query"))
	if !strings.Contains(string(out), `"""`) {
		t.Fatalf("expected triple-quoted re-emission, got: %s", out)
	}

	n2, err := Decode(out)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	q2, _ := n2.Get("query")
	if q2.Str != want {
		t.Fatalf("round-trip mismatch: got %q, want %q", q2.Str, want)
	}
}

func TestEncodeOmitsTripleQuoteWithoutNewline(t *testing.T) {
	n := Object()
	n.set("query", String(`single line with "quotes"`))
	out := Encode(n, NewMultilinePaths("query"))
	if strings.Contains(string(out), `"""`) {
		t.Fatalf("expected plain string encoding for single-line value, got: %s", out)
	}
}

func TestDropFields(t *testing.T) {
	n, err := Decode([]byte(`{"id":"1","updated_at":"2024-01-01","attributes":{"title":"x"}}`))
	if err != nil {
		t.Fatal(err)
	}
	DropFields(n, []string{"updated_at", "attributes.title"})
	if _, ok := n.Get("updated_at"); ok {
		t.Error("updated_at not dropped")
	}
	attrs, _ := n.Get("attributes")
	if _, ok := attrs.Get("title"); ok {
		t.Error("attributes.title not dropped")
	}
	if _, ok := n.Get("id"); !ok {
		t.Error("id should survive unrelated drop")
	}
}

func TestSetManaged(t *testing.T) {
	n, err := Decode([]byte(`{"id":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	SetManaged(n, true)
	m, ok := n.Get("managed")
	if !ok || m.Kind != KindBool || !m.Bool {
		t.Fatalf("managed not set true: %+v", m)
	}
}

func TestNestedJSONEscapeUnescapeRoundTrip(t *testing.T) {
	src := `{"attributes":{"kibanaSavedObjectMeta":{"searchSourceJSON":"{\"query\":{\"match_all\":{}},\"filter\":[]}"}}}`
	n, err := Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	path := "attributes.kibanaSavedObjectMeta.searchSourceJSON"
	if err := EscapeNestedJSON(n, path); err != nil {
		t.Fatalf("EscapeNestedJSON: %v", err)
	}
	v, _ := n.GetPath(path)
	if v.Kind != KindObject {
		t.Fatalf("expected nested JSON parsed into object, got kind %v", v.Kind)
	}

	if err := UnescapeNestedJSON(n, path); err != nil {
		t.Fatalf("UnescapeNestedJSON: %v", err)
	}
	v2, _ := n.GetPath(path)
	if v2.Kind != KindString {
		t.Fatalf("expected re-stringified nested JSON, got kind %v", v2.Kind)
	}

	n2, err := Decode([]byte(v2.Str))
	if err != nil {
		t.Fatalf("re-decode unescaped string: %v", err)
	}
	q, ok := n2.Get("query")
	if !ok || q.Kind != KindObject {
		t.Fatalf("round-tripped nested json lost structure: %+v", n2)
	}
}

func TestNoHTMLEscaping(t *testing.T) {
	n := Object()
	n.set("esql", String("FROM idx | WHERE a < b AND c > d"))
	out := Encode(n, nil)
	if !strings.Contains(string(out), `<`) || !strings.Contains(string(out), `>`) {
		t.Fatalf("expected raw < > in output, got HTML-escaped: %s", out)
	}
}

package codec

import (
	"bytes"
	"strings"
)

// MultilinePaths is a set of dot-separated field paths (object field names
// only, arrays don't add a segment) that Encode renders as triple-quoted
// blocks when the value is a string containing a newline. Typical members:
// "attributes.kibanaSavedObjectMeta.searchSourceJSON", "query", "esql".
type MultilinePaths map[string]bool

// NewMultilinePaths builds a MultilinePaths set from a list of paths.
func NewMultilinePaths(paths ...string) MultilinePaths {
	m := make(MultilinePaths, len(paths))
	for _, p := range paths {
		m[p] = true
	}
	return m
}

// Encode renders a Node tree as 2-space-indented extended JSON, matching
// the on-disk format in spec.md §6: object key order is preserved as
// decoded/constructed, and any string at a configured multiline path whose
// value contains a newline is rendered as a """triple-quoted""" block
// instead of a \n-escaped one-line string.
func Encode(n *Node, multiline MultilinePaths) []byte {
	var buf bytes.Buffer
	encodeNode(&buf, n, "", multiline, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func encodeNode(buf *bytes.Buffer, n *Node, path string, multiline MultilinePaths, depth int) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	switch n.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(n.Num.String())
	case KindString:
		if multiline[path] && strings.Contains(n.Str, "\n") {
			buf.Write(encodeTripleQuoted(n.Str))
		} else {
			lit, err := jsonStringLiteral(n.Str)
			if err != nil {
				// n.Str is always a valid Go string; encoding a string
				// literal cannot fail in practice.
				lit = []byte(`""`)
			}
			buf.Write(lit)
		}
	case KindArray:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			writeIndent(buf, depth+1)
			encodeNode(buf, item, path, multiline, depth+1)
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	case KindObject:
		if len(n.Keys) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, key := range n.Keys {
			writeIndent(buf, depth+1)
			keyLit, _ := jsonStringLiteral(key)
			buf.Write(keyLit)
			buf.WriteString(": ")
			encodeNode(buf, n.Fields[key], joinPath(path, key), multiline, depth+1)
			if i < len(n.Keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	}
}

// encodeTripleQuoted is the exact inverse of readTripleQuoted: every
// backslash and every quote in s is escaped, so a closing """ never
// appears unescaped inside the block and decoding recovers s byte for
// byte. Newlines are left as literal line breaks.
func encodeTripleQuoted(s string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`"""`)
	for _, r := range s {
		switch r {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteString(`"""`)
	return buf.Bytes()
}

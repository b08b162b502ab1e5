package codec

import "fmt"

// DropFields removes every configured volatile field path from n, in
// place. Used on pull to strip server-assigned bookkeeping (updated_at,
// version, etc., per spec.md §4.3) before the record is written to disk.
func DropFields(n *Node, paths []string) {
	for _, p := range paths {
		n.DeletePath(p)
	}
}

// SetManaged injects managed=<value> at the object root, overwriting any
// existing value. Used on push to set the managed flag of every workflow,
// agent, and tool record to the command's --managed value (spec.md §4.3,
// §4.5).
func SetManaged(n *Node, managed bool) {
	n.set("managed", Bool(managed))
}

// EscapeNestedJSON finds a string field at path whose content is itself a
// JSON document (e.g. a saved search's kibanaSavedObjectMeta.
// searchSourceJSON) and replaces it with the parsed Node tree, so that the
// outer Encode call can pretty-print it inline instead of leaving it as an
// opaque escaped JSON string. No-op if the field is absent, not a string,
// or not valid JSON.
func EscapeNestedJSON(n *Node, path string) error {
	v, ok := n.GetPath(path)
	if !ok || v.Kind != KindString {
		return nil
	}
	parsed, err := Decode([]byte(v.Str))
	if err != nil {
		// Not nested JSON; leave the plain string alone.
		return nil
	}
	return n.SetPath(path, parsed)
}

// UnescapeNestedJSON is the push-time inverse of EscapeNestedJSON: it
// re-serializes the Node tree at path back into a single compact JSON
// string, matching the wire shape the Server expects for fields it treats
// as opaque strings.
func UnescapeNestedJSON(n *Node, path string) error {
	v, ok := n.GetPath(path)
	if !ok {
		return nil
	}
	if v.Kind == KindString {
		return nil
	}
	compact, err := encodeCompact(v)
	if err != nil {
		return fmt.Errorf("codec: unescape nested json at %q: %w", path, err)
	}
	return n.SetPath(path, String(compact))
}

// encodeCompact renders a Node as single-line JSON, no indentation, for
// re-embedding as a nested string value.
func encodeCompact(n *Node) (string, error) {
	var buf []byte
	buf = appendCompact(buf, n)
	return string(buf), nil
}

func appendCompact(buf []byte, n *Node) []byte {
	if n == nil {
		return append(buf, "null"...)
	}
	switch n.Kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if n.Bool {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindNumber:
		return append(buf, n.Num.String()...)
	case KindString:
		lit, _ := jsonStringLiteral(n.Str)
		return append(buf, lit...)
	case KindArray:
		buf = append(buf, '[')
		for i, it := range n.Items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCompact(buf, it)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, k := range n.Keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyLit, _ := jsonStringLiteral(k)
			buf = append(buf, keyLit...)
			buf = append(buf, ':')
			buf = appendCompact(buf, n.Fields[k])
		}
		return append(buf, '}')
	}
	return buf
}

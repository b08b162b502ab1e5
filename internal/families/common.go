package families

import "go.datum.net/kibanasync/internal/codec"

// retainOnly returns a shallow copy of n containing only the listed
// top-level fields, in the order they appear in fields. Used by the
// workflows adapter, which whitelists the fields it sends on the wire
// rather than blacklisting server-owned ones.
func retainOnly(n *codec.Node, fields []string) *codec.Node {
	out := codec.Object()
	for _, f := range fields {
		if v, ok := n.Get(f); ok {
			out.SetPath(f, v.Clone())
		}
	}
	return out
}

// stripFields deletes the listed top-level fields from a clone of n,
// leaving everything else untouched. Used by the agents/tools adapters,
// which blacklist a small set of server-owned or readonly fields.
func stripFields(n *codec.Node, fields []string) *codec.Node {
	out := n.Clone()
	for _, f := range fields {
		out.DeletePath(f)
	}
	return out
}

// idOf reads the string id field from a record, for path construction.
func idOf(n *codec.Node, field string) (string, bool) {
	v, ok := n.Get(field)
	if !ok || v.Kind != codec.KindString {
		return "", false
	}
	return v.Str, true
}

// findByID returns the item in items whose "id" field equals id. Agents
// and tools expose no single-item GET; the add command's dependency
// closure fetches a newly discovered id by filtering the full List.
func findByID(items []*codec.Node, id string) (*codec.Node, bool) {
	for _, it := range items {
		if gotID, ok := idOf(it, "id"); ok && gotID == id {
			return it, true
		}
	}
	return nil, false
}

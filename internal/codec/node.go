// Package codec implements the lossless on-disk extended-JSON <-> wire
// canonical-JSON translation described in spec.md §4.3: comment and
// trailing-comma tolerance, triple-quoted multi-line strings, nested-JSON-
// in-string escaping, volatile-field dropping, and the managed-flag
// adder. No library in the retrieved corpus implements comment-tolerant,
// trailing-comma-tolerant, triple-quote JSON, so this package is built
// directly on encoding/json's tokenizer rather than an external dependency
// (see DESIGN.md).
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a decoded JSON value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Node is an order-preserving decoded JSON value. encoding/json's map
// decoding loses object key order; Node keeps it, which the disk layout
// needs ("sorted-insertion-order preserved", spec.md §6).
type Node struct {
	Kind Kind

	Bool bool
	Num  json.Number
	Str  string

	Items []*Node

	Keys   []string
	Fields map[string]*Node
}

// String builds a KindString leaf.
func String(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Bool builds a KindBool leaf.
func Bool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }

// Object builds an empty KindObject node.
func Object() *Node { return &Node{Kind: KindObject, Fields: map[string]*Node{}} }

// Clone deep-copies a node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Bool: n.Bool, Num: n.Num, Str: n.Str}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			out.Items[i] = it.Clone()
		}
	}
	if n.Fields != nil {
		out.Keys = append([]string(nil), n.Keys...)
		out.Fields = make(map[string]*Node, len(n.Fields))
		for k, v := range n.Fields {
			out.Fields[k] = v.Clone()
		}
	}
	return out
}

// Get returns the direct child field of an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	v, ok := n.Fields[key]
	return v, ok
}

// set inserts or replaces a direct child field, preserving existing key
// order or appending a new key at the end.
func (n *Node) set(key string, v *Node) {
	if _, exists := n.Fields[key]; !exists {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = v
}

// deleteKey removes a direct child field, if present.
func (n *Node) deleteKey(key string) bool {
	if _, ok := n.Fields[key]; !ok {
		return false
	}
	delete(n.Fields, key)
	for i, k := range n.Keys {
		if k == key {
			n.Keys = append(n.Keys[:i], n.Keys[i+1:]...)
			break
		}
	}
	return true
}

func splitPath(path string) []string { return strings.Split(path, ".") }

// GetPath resolves a dot-separated path of object field names.
func (n *Node) GetPath(path string) (*Node, bool) {
	cur := n
	for _, seg := range splitPath(path) {
		v, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// SetPath assigns a value at a dot-separated path, creating intermediate
// object nodes as needed.
func (n *Node) SetPath(path string, v *Node) error {
	segs := splitPath(path)
	cur := n
	for _, seg := range segs[:len(segs)-1] {
		if cur.Kind != KindObject {
			return fmt.Errorf("codec: cannot descend into non-object at %q", seg)
		}
		child, ok := cur.Fields[seg]
		if !ok {
			child = Object()
			cur.set(seg, child)
		}
		cur = child
	}
	if cur.Kind != KindObject {
		return fmt.Errorf("codec: cannot set field on non-object")
	}
	cur.set(segs[len(segs)-1], v)
	return nil
}

// DeletePath removes the value at a dot-separated path, if present.
// Reports whether anything was removed.
func (n *Node) DeletePath(path string) bool {
	segs := splitPath(path)
	cur := n
	for _, seg := range segs[:len(segs)-1] {
		v, ok := cur.Get(seg)
		if !ok {
			return false
		}
		cur = v
	}
	if cur.Kind != KindObject {
		return false
	}
	return cur.deleteKey(segs[len(segs)-1])
}

// Interface converts the Node tree into plain Go values
// (map[string]interface{}, []interface{}, string, json.Number, bool, nil),
// suitable for feeding into a family adapter's request body or an
// encoding/json.Marshal call that doesn't need order preservation (e.g.
// the wire payload, where object key order is never semantically
// significant).
func (n *Node) Interface() interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindNull:
		return nil
	case KindBool:
		return n.Bool
	case KindNumber:
		if f, err := n.Num.Float64(); err == nil {
			return f
		}
		return n.Num.String()
	case KindString:
		return n.Str
	case KindArray:
		out := make([]interface{}, len(n.Items))
		for i, it := range n.Items {
			out[i] = it.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(n.Keys))
		for _, k := range n.Keys {
			out[k] = n.Fields[k].Interface()
		}
		return out
	}
	return nil
}

// FromInterface builds a Node tree from plain Go values as produced by
// encoding/json.Unmarshal(..., &v) with UseNumber-style decoding, or by
// hand-built map[string]interface{} literals (e.g. from a family
// adapter). Object key order is alphabetical in this path, since plain
// Go maps carry no order; prefer Decode for anything that must preserve
// on-disk key order.
func FromInterface(v interface{}) *Node {
	switch t := v.(type) {
	case nil:
		return &Node{Kind: KindNull}
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return &Node{Kind: KindNumber, Num: t}
	case float64:
		return &Node{Kind: KindNumber, Num: json.Number(strconv.FormatFloat(t, 'f', -1, 64))}
	case int:
		return &Node{Kind: KindNumber, Num: json.Number(strconv.Itoa(t))}
	case []interface{}:
		arr := &Node{Kind: KindArray}
		for _, it := range t {
			arr.Items = append(arr.Items, FromInterface(it))
		}
		return arr
	case map[string]interface{}:
		obj := Object()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		// deterministic order for values with no natural on-disk order
		sortStrings(keys)
		for _, k := range keys {
			obj.set(k, FromInterface(t[k]))
		}
		return obj
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Set is an ordered mapping from field name to node. Key order is insertion
// order, kept stable for deterministic serialization; occurrence order
// inside a leaf is document order (first-match-wins reads).
type Set struct {
	keys  []string
	nodes map[string]*Node
}

func NewSet() *Set {
	return &Set{nodes: make(map[string]*Node)}
}

// Put installs a node under key, replacing any previous node but keeping
// the key's original position.
func (s *Set) Put(key string, n *Node) *Set {
	if n == nil {
		n = Leaf()
	}
	if _, exists := s.nodes[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.nodes[key] = n
	return s
}

// PutLeaf installs field occurrences as a leaf under key.
func (s *Set) PutLeaf(key string, ff ...Field) *Set {
	return s.Put(key, Leaf(ff...))
}

// AppendLeaf extends an existing leaf under key, creating it when absent.
func (s *Set) AppendLeaf(key string, ff ...Field) *Set {
	if existing, ok := s.nodes[key]; ok && existing.kind == KindLeaf {
		merged := append(slices.Clone(existing.leaf), ff...)
		return s.Put(key, Leaf(merged...))
	}
	return s.PutLeaf(key, ff...)
}

// Node returns the node stored under key.
func (s *Set) Node(key string) (*Node, bool) {
	n, ok := s.nodes[key]
	return n, ok
}

// Leaf returns the occurrences of a direct leaf key. Missing keys and
// non-leaf keys both yield an empty, non-nil slice.
func (s *Set) Leaf(key string) []Field {
	n, ok := s.nodes[key]
	if !ok {
		return []Field{}
	}
	return n.Fields()
}

// First returns the first occurrence of a direct leaf key.
func (s *Set) First(key string) (Field, bool) {
	ff := s.Leaf(key)
	if len(ff) == 0 {
		return Field{}, false
	}
	return ff[0], true
}

// Keys returns the field names in insertion order.
func (s *Set) Keys() []string {
	return slices.Clone(s.keys)
}

func (s *Set) Len() int {
	return len(s.keys)
}

// Clone deep-copies the set.
func (s *Set) Clone() *Set {
	if s == nil {
		return NewSet()
	}
	out := NewSet()
	for _, k := range s.keys {
		out.Put(k, s.nodes[k].clone())
	}
	return out
}

// FlatField is one leaf occurrence with its dotted tree path. List elements
// contribute their index to the path ("line_items.0.description").
type FlatField struct {
	Path  string
	Key   string
	Field Field
}

// Flatten walks every leaf occurrence depth-first in key order.
func (s *Set) Flatten() []FlatField {
	out := make([]FlatField, 0)
	s.flattenInto("", &out)
	return out
}

func (s *Set) flattenInto(prefix string, out *[]FlatField) {
	if s == nil {
		return
	}
	for _, k := range s.keys {
		path := joinPath(prefix, k)
		switch n := s.nodes[k]; n.kind {
		case KindLeaf:
			for _, f := range n.leaf {
				*out = append(*out, FlatField{Path: path, Key: k, Field: f})
			}
		case KindGroup:
			n.group.flattenInto(path, out)
		case KindList:
			for i, rec := range n.list {
				rec.flattenInto(joinPath(path, strconv.Itoa(i)), out)
			}
		}
	}
}

// FindLeaf locates the first leaf named key anywhere in the tree, pre-order,
// and returns its occurrences. An empty, non-nil slice means not found.
func (s *Set) FindLeaf(key string) []Field {
	if s == nil {
		return []Field{}
	}
	if n, ok := s.nodes[key]; ok && n.kind == KindLeaf {
		return n.Fields()
	}
	for _, k := range s.keys {
		switch n := s.nodes[k]; n.kind {
		case KindGroup:
			if ff := n.group.FindLeaf(key); len(ff) > 0 {
				return ff
			}
		case KindList:
			for _, rec := range n.list {
				if ff := rec.FindLeaf(key); len(ff) > 0 {
					return ff
				}
			}
		}
	}
	return []Field{}
}

// Transform rebuilds the tree, offering every leaf occurrence to fn. When fn
// reports a replacement the copy carries it; the receiver is never touched.
func (s *Set) Transform(fn func(path string, key string, f Field) (Field, bool)) *Set {
	return s.transform("", fn)
}

func (s *Set) transform(prefix string, fn func(string, string, Field) (Field, bool)) *Set {
	if s == nil {
		return NewSet()
	}
	out := NewSet()
	for _, k := range s.keys {
		path := joinPath(prefix, k)
		switch n := s.nodes[k]; n.kind {
		case KindLeaf:
			ff := make([]Field, len(n.leaf))
			for i, f := range n.leaf {
				if replaced, ok := fn(path, k, f); ok {
					ff[i] = replaced
				} else {
					ff[i] = f
				}
			}
			out.Put(k, Leaf(ff...))
		case KindGroup:
			out.Put(k, Group(n.group.transform(path, fn)))
		case KindList:
			recs := make([]*Set, len(n.list))
			for i, rec := range n.list {
				recs[i] = rec.transform(joinPath(path, strconv.Itoa(i)), fn)
			}
			out.Put(k, List(recs...))
		}
	}
	return out
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// MarshalJSON writes the set as an object with keys in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		nb, err := json.Marshal(s.nodes[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(nb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a set, preserving the document's key order.
func (s *Set) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field set must be a JSON object")
	}
	s.keys = nil
	s.nodes = make(map[string]*Node)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("field set key must be a string")
		}
		var n Node
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		s.Put(key, &n)
	}
	_, err = dec.Token() // closing brace
	return err
}

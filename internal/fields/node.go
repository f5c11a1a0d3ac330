package fields

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Kind tags the shape a field key resolved to at construction time. The
// shape is part of the node, never re-inferred when reading.
type Kind int

const (
	KindLeaf Kind = iota
	KindGroup
	KindList
)

// Node is the tagged union behind one field key: an ordered run of field
// occurrences (leaf), a nested set (group), or a sequence of sets (list,
// e.g. line items).
type Node struct {
	kind  Kind
	leaf  []Field
	group *Set
	list  []*Set
}

// Leaf builds a leaf node from field occurrences in document order.
func Leaf(ff ...Field) *Node {
	return &Node{kind: KindLeaf, leaf: slices.Clone(ff)}
}

// Group wraps a nested set. A nil set is replaced with an empty one.
func Group(s *Set) *Node {
	if s == nil {
		s = NewSet()
	}
	return &Node{kind: KindGroup, group: s}
}

// List builds a sequence-of-records node.
func List(sets ...*Set) *Node {
	return &Node{kind: KindList, list: slices.Clone(sets)}
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Fields returns the leaf occurrences. Non-leaf nodes and empty leaves both
// return an empty, non-nil slice.
func (n *Node) Fields() []Field {
	if n == nil || n.kind != KindLeaf {
		return []Field{}
	}
	return slices.Clone(n.leaf)
}

// GroupSet returns the nested set of a group node.
func (n *Node) GroupSet() (*Set, bool) {
	if n == nil || n.kind != KindGroup {
		return nil, false
	}
	return n.group, true
}

// ListSets returns the records of a list node in order.
func (n *Node) ListSets() []*Set {
	if n == nil || n.kind != KindList {
		return nil
	}
	return slices.Clone(n.list)
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindLeaf:
		return Leaf(n.leaf...)
	case KindGroup:
		return Group(n.group.Clone())
	default:
		cloned := make([]*Set, len(n.list))
		for i, s := range n.list {
			cloned[i] = s.Clone()
		}
		return List(cloned...)
	}
}

// MarshalJSON renders a leaf as an array of field objects, a group as a
// nested object, and a list as an array of nested objects.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindLeaf:
		if n.leaf == nil {
			return json.Marshal([]Field{})
		}
		return json.Marshal(n.leaf)
	case KindGroup:
		return json.Marshal(n.group)
	case KindList:
		if n.list == nil {
			return json.Marshal([]*Set{})
		}
		return json.Marshal(n.list)
	default:
		return nil, fmt.Errorf("unknown node kind %d", n.kind)
	}
}

// UnmarshalJSON reverses MarshalJSON. Arrays are disambiguated by element
// shape: field objects always carry a "confidence" member, record objects
// never do.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := firstByte(data)
	switch trimmed {
	case '{':
		var s Set
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.kind = KindGroup
		n.group = &s
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if len(raw) == 0 {
			n.kind = KindLeaf
			n.leaf = []Field{}
			return nil
		}
		if isFieldObject(raw[0]) {
			var ff []Field
			if err := json.Unmarshal(data, &ff); err != nil {
				return err
			}
			n.kind = KindLeaf
			n.leaf = ff
			return nil
		}
		sets := make([]*Set, 0, len(raw))
		for _, r := range raw {
			var s Set
			if err := json.Unmarshal(r, &s); err != nil {
				return err
			}
			sets = append(sets, &s)
		}
		n.kind = KindList
		n.list = sets
		return nil
	default:
		return fmt.Errorf("node must be a JSON object or array")
	}
}

func isFieldObject(raw json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe["confidence"]
	return ok
}

func firstByte(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

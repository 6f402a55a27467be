// Package docnode is the untyped document tree shared by the loader, the
// residual field bag and the saver. A Node is a closed union of three kinds:
// scalar, sequence and mapping.
package docnode

import (
	"strings"
)

// Kind discriminates the three node variants.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// Quote records how a scalar was quoted in the source so it can be written
// back the same way.
type Quote uint8

const (
	QuoteNone Quote = iota
	QuoteSingle
	QuoteDouble
)

// Node is one element of a document tree.
type Node struct {
	Kind  Kind
	Tag   string // resolved tag from the parser, empty for synthesized nodes
	Value string // scalar text
	Quote Quote
	Flow  bool // collection written in flow style ({a: 1} / [1, 2])
	Items []*Node
	Pairs []Pair
}

// Pair is one key/value entry of a mapping, kept in document order.
type Pair struct {
	Key   string
	Value *Node
}

// Scalar returns a plain scalar node.
func Scalar(v string) *Node {
	return &Node{Kind: KindScalar, Value: v}
}

// Sequence returns a block sequence holding items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// Mapping returns an empty block mapping.
func Mapping() *Node {
	return &Node{Kind: KindMapping}
}

// FlowMapping returns an empty flow-style mapping.
func FlowMapping() *Node {
	return &Node{Kind: KindMapping, Flow: true}
}

// Get returns the value stored under key, or nil when n is not a mapping or
// the key is absent.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, p := range n.Pairs {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Set replaces the value under key, appending a new pair when absent.
func (n *Node) Set(key string, v *Node) {
	for i := range n.Pairs {
		if n.Pairs[i].Key == key {
			n.Pairs[i].Value = v
			return
		}
	}
	n.Pairs = append(n.Pairs, Pair{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	for i := range n.Pairs {
		if n.Pairs[i].Key == key {
			n.Pairs = append(n.Pairs[:i], n.Pairs[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	keys := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Tag: n.Tag, Value: n.Value, Quote: n.Quote, Flow: n.Flow}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.Clone()
		}
	}
	if n.Pairs != nil {
		c.Pairs = make([]Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			c.Pairs[i] = Pair{Key: p.Key, Value: p.Value.Clone()}
		}
	}
	return c
}

// Equal reports structural equality. Scalars compare their text, sequences
// compare length then elements by position, mappings compare key count then
// values by key regardless of order. Differing kinds are never equal.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScalar:
		return a.Value == b.Value
	case KindSequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for _, p := range a.Pairs {
			other := b.Get(p.Key)
			if other == nil || !Equal(p.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders n on a single line in flow style. It is meant for log and
// report messages, not for saving.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeFlow(&sb)
	return sb.String()
}

func (n *Node) writeFlow(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("~")
		return
	}
	switch n.Kind {
	case KindScalar:
		if n.Value == "" {
			sb.WriteString("''")
			return
		}
		sb.WriteString(strings.ReplaceAll(n.Value, "\n", `\n`))
	case KindSequence:
		sb.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			it.writeFlow(sb)
		}
		sb.WriteByte(']')
	case KindMapping:
		sb.WriteByte('{')
		for i, p := range n.Pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Key)
			sb.WriteString(": ")
			p.Value.writeFlow(sb)
		}
		sb.WriteByte('}')
	}
}

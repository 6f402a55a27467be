package docnode

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded yaml.v3 node into a Node. Document nodes are
// unwrapped. Aliases and non-scalar mapping keys are rejected because the
// scene format never produces them.
func FromYAML(y *yaml.Node) (*Node, error) {
	if y == nil {
		return nil, fmt.Errorf("docnode: nil yaml node")
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) != 1 {
			return nil, fmt.Errorf("docnode: document at line %d has %d roots", y.Line, len(y.Content))
		}
		return FromYAML(y.Content[0])
	case yaml.ScalarNode:
		n := &Node{Kind: KindScalar, Tag: y.Tag, Value: y.Value}
		switch {
		case y.Style&yaml.SingleQuotedStyle != 0:
			n.Quote = QuoteSingle
		case y.Style&yaml.DoubleQuotedStyle != 0:
			n.Quote = QuoteDouble
		}
		return n, nil
	case yaml.SequenceNode:
		n := &Node{Kind: KindSequence, Tag: y.Tag, Flow: y.Style&yaml.FlowStyle != 0}
		n.Items = make([]*Node, 0, len(y.Content))
		for _, c := range y.Content {
			item, err := FromYAML(c)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	case yaml.MappingNode:
		n := &Node{Kind: KindMapping, Tag: y.Tag, Flow: y.Style&yaml.FlowStyle != 0}
		n.Pairs = make([]Pair, 0, len(y.Content)/2)
		seen := make(map[string]bool, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("docnode: non-scalar mapping key at line %d", k.Line)
			}
			if seen[k.Value] {
				return nil, fmt.Errorf("docnode: duplicate key %q at line %d", k.Value, k.Line)
			}
			seen[k.Value] = true
			v, err := FromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.Pairs = append(n.Pairs, Pair{Key: k.Value, Value: v})
		}
		return n, nil
	case yaml.AliasNode:
		return nil, fmt.Errorf("docnode: alias *%s at line %d is not supported", y.Value, y.Line)
	}
	return nil, fmt.Errorf("docnode: unknown yaml node kind %d at line %d", y.Kind, y.Line)
}

// ToYAML converts n back into a yaml.v3 node ready for encoding.
func (n *Node) ToYAML() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	}
	switch n.Kind {
	case KindScalar:
		y := &yaml.Node{Kind: yaml.ScalarNode, Tag: n.Tag, Value: n.Value}
		switch n.Quote {
		case QuoteSingle:
			y.Style = yaml.SingleQuotedStyle
		case QuoteDouble:
			y.Style = yaml.DoubleQuotedStyle
		}
		return y
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: n.Tag}
		if n.Flow {
			y.Style = yaml.FlowStyle
		}
		for _, it := range n.Items {
			y.Content = append(y.Content, it.ToYAML())
		}
		return y
	default:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: n.Tag}
		if n.Flow {
			y.Style = yaml.FlowStyle
		}
		for _, p := range n.Pairs {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: p.Key},
				p.Value.ToYAML())
		}
		return y
	}
}

package track

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/dusk-indust/unitymerge/internal/docnode"
)

// ErrShape is returned when a node does not have the shape a typed slot
// requires.
var ErrShape = errors.New("unexpected node shape")

// Integer is the set of integer types typed slots are stored as.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint32
}

func kindOf(n *docnode.Node) string {
	if n == nil {
		return "nothing"
	}
	return n.Kind.String()
}

// ParseInt parses s and range-checks it into T.
func ParseInt[T Integer](s string) (T, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrShape, s)
	}
	out, err := safecast.Conv[T](v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrShape, s, err)
	}
	return out, nil
}

// LoadInt reads an integer scalar into a present Value.
func LoadInt[T Integer](n *docnode.Node) (Value[T], error) {
	if n == nil || n.Kind != docnode.KindScalar {
		return Value[T]{}, fmt.Errorf("%w: expected integer scalar, got %s", ErrShape, kindOf(n))
	}
	v, err := ParseInt[T](n.Value)
	if err != nil {
		return Value[T]{}, err
	}
	return Of(v), nil
}

// LoadString reads a scalar into a present Value.
func LoadString(n *docnode.Node) (Value[string], error) {
	if n == nil || n.Kind != docnode.KindScalar {
		return Value[string]{}, fmt.Errorf("%w: expected scalar, got %s", ErrShape, kindOf(n))
	}
	return Of(n.Value), nil
}

// IntNode renders an integer scalar.
func IntNode[T Integer](v T) *docnode.Node {
	return docnode.Scalar(strconv.FormatInt(int64(v), 10))
}

// Vector axes in the order they are written.
var (
	Vec3 = []string{"x", "y", "z"}
	Vec4 = []string{"x", "y", "z", "w"}
)

// LoadVector reads a {x, y, z[, w]} mapping. Components keep their source
// text so unchanged vectors are written back byte for byte, but compare as
// numbers: 0 and 0.0 are the same component.
func LoadVector(n *docnode.Node, axes []string) (Array[string], error) {
	if n == nil || n.Kind != docnode.KindMapping {
		return Array[string]{}, fmt.Errorf("%w: expected vector mapping, got %s", ErrShape, kindOf(n))
	}
	out := make([]string, len(axes))
	for i, ax := range axes {
		c := n.Get(ax)
		if c == nil || c.Kind != docnode.KindScalar {
			return Array[string]{}, fmt.Errorf("%w: vector %s has no %s component", ErrShape, n, ax)
		}
		if _, err := strconv.ParseFloat(c.Value, 64); err != nil {
			return Array[string]{}, fmt.Errorf("%w: vector component %s=%q is not a number", ErrShape, ax, c.Value)
		}
		out[i] = c.Value
	}
	v := ArrayOf(out...)
	v.eq = SameNumber
	return v, nil
}

// SameNumber reports whether a and b spell the same number. Text that does
// not parse is compared as is.
func SameNumber(a, b string) bool {
	if a == b {
		return true
	}
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && x == y
}

// VectorNode renders components as a flow mapping over axes.
func VectorNode(v []string, axes []string) *docnode.Node {
	m := docnode.FlowMapping()
	for i, ax := range axes {
		if i < len(v) {
			m.Set(ax, docnode.Scalar(v[i]))
		}
	}
	return m
}

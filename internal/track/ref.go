package track

import (
	"fmt"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
)

// Ref is a tracked reference: {fileID, guid, type}. A ref with an empty
// guid points inside the same document; a non-empty guid points into an
// external asset.
type Ref struct {
	FileID  Value[int64]
	GUID    Value[string]
	Type    Value[int32]
	Present bool
	Changed bool
}

// LocalRef returns a present in-document reference.
func LocalRef(id int64) Ref {
	return Ref{FileID: Of(id), Present: true}
}

// ID returns the referenced fileID, or 0.
func (f *Ref) ID() int64 {
	if !f.Present {
		return 0
	}
	return f.FileID.Value
}

// IsNull reports whether the reference is absent or points at fileID 0.
func (f *Ref) IsNull() bool {
	return f.ID() == 0
}

// IsLocal reports whether the reference targets an object in the same
// document.
func (f *Ref) IsLocal() bool {
	return !f.IsNull() && f.GUID.Value == ""
}

// Key identifies the target across documents.
func (f *Ref) Key() string {
	if f.GUID.Value == "" {
		return fmt.Sprintf("%d", f.FileID.Value)
	}
	return fmt.Sprintf("%d:%s", f.FileID.Value, f.GUID.Value)
}

func (f *Ref) String() string {
	if !f.Present {
		return "~"
	}
	return f.Node().String()
}

// Diff diffs each sub-field against base. The ref is changed when any
// sub-field changed or its presence differs.
func (f *Ref) Diff(base *Ref) bool {
	if !f.Present && !base.Present {
		f.Changed = false
		return false
	}
	a := f.FileID.Diff(&base.FileID)
	b := f.GUID.Diff(&base.GUID)
	c := f.Type.Diff(&base.Type)
	f.Changed = a || b || c || f.Present != base.Present
	return f.Changed
}

// Merge merges each sub-field independently under name.fileID, name.guid
// and name.type.
func (f *Ref) Merge(name string, theirs *Ref, r *report.Report) {
	f.FileID.Merge(name+".fileID", &theirs.FileID, r)
	f.GUID.Merge(name+".guid", &theirs.GUID, r)
	f.Type.Merge(name+".type", &theirs.Type, r)
	f.Present = f.FileID.Present || f.GUID.Present || f.Type.Present
}

// LoadRef reads a {fileID, guid, type} mapping.
func LoadRef(n *docnode.Node) (Ref, error) {
	var f Ref
	if n == nil || n.Kind != docnode.KindMapping {
		return f, fmt.Errorf("%w: reference must be a mapping, got %s", ErrShape, kindOf(n))
	}
	if !n.Has("fileID") {
		return f, fmt.Errorf("%w: reference %s has no fileID", ErrShape, n)
	}
	f.Present = true
	var err error
	if f.FileID, err = LoadInt[int64](n.Get("fileID")); err != nil {
		return f, fmt.Errorf("fileID: %w", err)
	}
	if g := n.Get("guid"); g != nil {
		if f.GUID, err = LoadString(g); err != nil {
			return f, fmt.Errorf("guid: %w", err)
		}
	}
	if t := n.Get("type"); t != nil {
		if f.Type, err = LoadInt[int32](t); err != nil {
			return f, fmt.Errorf("type: %w", err)
		}
	}
	return f, nil
}

// Node renders the reference as a flow mapping.
func (f *Ref) Node() *docnode.Node {
	m := docnode.FlowMapping()
	if f.FileID.Present {
		m.Set("fileID", IntNode(f.FileID.Value))
	}
	if f.GUID.Present {
		m.Set("guid", docnode.Scalar(f.GUID.Value))
	}
	if f.Type.Present {
		m.Set("type", IntNode(f.Type.Value))
	}
	return m
}

// Package report implements the path-addressed merge report. A Report is
// created empty in Recording mode, where every decision taken under the
// default policy is logged, or loaded from a previously written (and possibly
// hand-edited) report in Replaying mode, where logged decisions are forced.
// In both modes the decisions actually taken are recorded so the run can be
// written back out.
package report

import (
	"strings"
)

// Mode selects how Decide resolves a decision point.
type Mode uint8

const (
	// Recording applies the default policy and logs it.
	Recording Mode = iota
	// Replaying looks decisions up in a loaded report first.
	Replaying
)

func (m Mode) String() string {
	if m == Replaying {
		return "replaying"
	}
	return "recording"
}

// Entry is one logged decision.
type Entry struct {
	Subject  string // field name or entity description
	Message  string
	Theirs   bool // true when the remote side was taken
	Conflict bool
	Resolved bool // decided by a loaded report rather than by default policy
}

// Node is one scope of the report tree.
type Node struct {
	Name     string
	Children []*Node
	Entries  []Entry
	// Override forces every decision at or below this scope to one side
	// during replay. Nil when no override is set.
	Override *Side

	index map[string]*Node
}

// Side names the two inputs a decision can pick from.
type Side bool

const (
	Mine   Side = false
	Theirs Side = true
)

func (s Side) String() string {
	if s == Theirs {
		return "THEIRS"
	}
	return "MINE"
}

func newNode(name string) *Node {
	return &Node{Name: name, index: make(map[string]*Node)}
}

// Child returns the named child scope, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	return n.index[name]
}

func (n *Node) child(name string) *Node {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := newNode(name)
	n.index[name] = c
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) lookup(subject string) (Entry, bool) {
	if n == nil {
		return Entry{}, false
	}
	for _, e := range n.Entries {
		if e.Subject == subject {
			return e, true
		}
	}
	return Entry{}, false
}

// frame is one level of the scope stack. rec is where decisions are logged;
// src is the matching scope of the loaded report, nil when the path is not
// present there.
type frame struct {
	rec      *Node
	src      *Node
	override *Side
}

// Decision describes a decision point and its default outcome.
type Decision struct {
	Subject  string
	Message  string
	Conflict bool
	Theirs   bool // default policy outcome
}

// Report is the merge report. It is not safe for concurrent use; a merge
// run is single-threaded.
type Report struct {
	mode   Mode
	root   *Node
	loaded *Node
	stack  []frame
}

// New returns an empty report in Recording mode.
func New() *Report {
	r := &Report{mode: Recording, root: newNode("")}
	r.stack = []frame{{rec: r.root}}
	return r
}

func newReplay(loaded *Node) *Report {
	r := New()
	r.mode = Replaying
	r.loaded = loaded
	r.root.Override = loaded.Override
	r.stack[0].src = loaded
	r.stack[0].override = loaded.Override
	return r
}

// Mode reports whether the report is recording or replaying.
func (r *Report) Mode() Mode { return r.mode }

// Root returns the tree of decisions taken during this run.
func (r *Report) Root() *Node { return r.root }

// Loaded returns the tree read from the report file, nil when recording.
func (r *Report) Loaded() *Node { return r.loaded }

// Depth returns the number of scopes pushed above the root.
func (r *Report) Depth() int { return len(r.stack) - 1 }

// Push opens a scope for an entity or sub-record. The scope path is the
// segments of scenePath followed by description, relative to the current
// scope.
func (r *Report) Push(description, scenePath string) {
	top := r.stack[len(r.stack)-1]
	rec, src, override := top.rec, top.src, top.override
	for _, seg := range segments(description, scenePath) {
		rec = rec.child(seg)
		if src != nil {
			src = src.Child(seg)
		}
		if src != nil && src.Override != nil {
			override = src.Override
			rec.Override = src.Override
		}
	}
	r.stack = append(r.stack, frame{rec: rec, src: src, override: override})
}

// Pop closes the innermost scope. The root scope is never popped.
func (r *Report) Pop() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// Decide resolves a decision point and reports whether to take theirs. In
// Recording mode the default outcome is taken. In Replaying mode an
// enclosing override wins, then an entry with the same subject in the
// matching loaded scope, then the default. The outcome is logged in the
// current scope either way.
func (r *Report) Decide(d Decision) bool {
	top := r.stack[len(r.stack)-1]
	theirs := d.Theirs
	resolved := false
	if r.mode == Replaying {
		if top.override != nil {
			theirs, resolved = bool(*top.override), true
		} else if e, ok := top.src.lookup(d.Subject); ok {
			theirs, resolved = e.Theirs, true
		}
	}
	top.rec.Entries = append(top.rec.Entries, Entry{
		Subject:  d.Subject,
		Message:  d.Message,
		Theirs:   theirs,
		Conflict: d.Conflict,
		Resolved: resolved,
	})
	return theirs
}

// Summary counts what a run decided.
type Summary struct {
	Scopes     int
	Decisions  int
	Conflicts  int
	Unresolved int // conflicts decided by default policy
	Overrides  int
}

// HasConflicts reports whether any conflict was logged.
func (s Summary) HasConflicts() bool { return s.Conflicts > 0 }

// Summary walks the recorded tree.
func (r *Report) Summary() Summary { return r.root.Summary() }

// Summary counts the entries at and below n.
func (n *Node) Summary() Summary {
	var s Summary
	var walk func(n *Node)
	walk = func(n *Node) {
		if len(n.Entries) > 0 {
			s.Scopes++
		}
		for _, e := range n.Entries {
			s.Decisions++
			if e.Conflict {
				s.Conflicts++
				if !e.Resolved {
					s.Unresolved++
				}
			}
		}
		if n.Override != nil {
			s.Overrides++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return s
}

// Walk visits every recorded entry with the scope path leading to it.
func (r *Report) Walk(fn func(path []string, e Entry)) { r.root.Walk(fn) }

// Walk visits every entry at and below n. Paths are relative to n.
func (n *Node) Walk(fn func(path []string, e Entry)) {
	var walk func(n *Node, path []string)
	walk = func(n *Node, path []string) {
		for _, e := range n.Entries {
			fn(path, e)
		}
		for _, c := range n.Children {
			walk(c, append(path[:len(path):len(path)], c.Name))
		}
	}
	if n != nil {
		walk(n, nil)
	}
}

func segments(description, scenePath string) []string {
	var segs []string
	for _, s := range strings.Split(scenePath, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	if d := strings.TrimSpace(description); d != "" {
		segs = append(segs, d)
	}
	return segs
}

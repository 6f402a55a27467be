package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/unitymerge/internal/scene"
)

// TreeNode is one line of a hierarchy listing: a game object, or a
// transform no game object owns.
type TreeNode struct {
	ID         int64
	Name       string
	Depth      int
	Parent     int64 // 0 at the top level
	Components []string
}

// Hierarchy lists g depth first from its root transforms, children in
// sibling order. Game objects without a transform follow at the top level.
func Hierarchy(g *scene.Graph) []TreeNode {
	var out []TreeNode
	listed := make(map[int64]bool)

	var visit func(tr, parent int64, depth int)
	visit = func(tr, parent int64, depth int) {
		n := TreeNode{ID: tr, Name: g.Name(tr), Depth: depth, Parent: parent}
		if goID, ok := g.Owner(tr); ok {
			n.ID, n.Name = goID, g.Name(goID)
			n.Components = describe(g, g.Components(goID))
			listed[goID] = true
		}
		out = append(out, n)
		for _, c := range g.Children(tr) {
			visit(c, n.ID, depth+1)
		}
	}
	for _, r := range g.Roots() {
		visit(r, 0, 0)
	}

	for _, e := range g.Entities() {
		obj, ok := e.(*scene.GameObject)
		if !ok || listed[obj.ID()] {
			continue
		}
		out = append(out, TreeNode{
			ID:         obj.ID(),
			Name:       g.Name(obj.ID()),
			Components: describe(g, g.Components(obj.ID())),
		})
	}
	return out
}

func describe(g *scene.Graph, ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Get(id).Describe())
	}
	return out
}

// WriteTree writes the hierarchy as an indented listing, two spaces per
// level, each node followed by its components.
func WriteTree(w io.Writer, g *scene.Graph) error {
	var sb strings.Builder
	for _, n := range Hierarchy(g) {
		indent := strings.Repeat("  ", n.Depth)
		fmt.Fprintf(&sb, "%s%s &%d\n", indent, n.Name, n.ID)
		for _, c := range n.Components {
			fmt.Fprintf(&sb, "%s  - %s\n", indent, c)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// GenerateMermaid renders the hierarchy as a Mermaid graph TD diagram with
// one arrow per parent-child edge.
func GenerateMermaid(g *scene.Graph) string {
	nodes := Hierarchy(g)
	ids := make(map[int64]string, len(nodes))
	for i, n := range nodes {
		ids[n.ID] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", ids[n.ID], mermaidLabel(n.Name))
	}
	for _, n := range nodes {
		if n.Depth > 0 {
			fmt.Fprintf(&sb, "  %s --> %s\n", ids[n.Parent], ids[n.ID])
		}
	}
	return sb.String()
}

func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

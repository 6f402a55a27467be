// Package ui holds the interactive terminal views.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dusk-indust/unitymerge/internal/report"
)

type conflictItem struct {
	path   string
	entry  *report.Entry
	theirs bool // side as loaded
}

// ReviewModel lets a user pick a side for every conflict of a loaded
// report. Choices are written into the report tree in place; the caller
// saves the tree when Saved reports true.
type ReviewModel struct {
	title  string
	items  []conflictItem
	cursor int
	width  int
	saved  bool
	done   bool
}

// NewReviewModel collects the conflicts of tree in report order.
func NewReviewModel(title string, tree *report.Node) *ReviewModel {
	m := &ReviewModel{title: title, width: 80}
	if tree != nil {
		m.collect(tree, "")
	}
	return m
}

func (m *ReviewModel) collect(n *report.Node, path string) {
	for i := range n.Entries {
		e := &n.Entries[i]
		if e.Conflict {
			p := path
			if p == "" {
				p = "/"
			}
			m.items = append(m.items, conflictItem{path: p, entry: e, theirs: e.Theirs})
		}
	}
	for _, c := range n.Children {
		m.collect(c, path+"/"+c.Name)
	}
}

// Len is the number of conflicts under review.
func (m *ReviewModel) Len() int { return len(m.items) }

// Saved reports whether the user asked to keep the choices.
func (m *ReviewModel) Saved() bool { return m.saved }

// Changed counts conflicts whose side differs from the loaded one.
func (m *ReviewModel) Changed() int {
	n := 0
	for _, it := range m.items {
		if it.entry.Theirs != it.theirs {
			n++
		}
	}
	return n
}

func (m *ReviewModel) Init() tea.Cmd { return nil }

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "m":
			m.pick(false)
		case "t":
			m.pick(true)
		case " ", "tab":
			if it, ok := m.current(); ok {
				it.entry.Theirs = !it.entry.Theirs
			}
		case "s", "enter":
			m.saved, m.done = true, true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ReviewModel) current() (conflictItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return conflictItem{}, false
	}
	return m.items[m.cursor], true
}

func (m *ReviewModel) pick(theirs bool) {
	if it, ok := m.current(); ok {
		it.entry.Theirs = theirs
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	theirsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

func (m *ReviewModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d conflicts)", m.title, len(m.items))))
	b.WriteString("\n\n")
	if len(m.items) == 0 {
		b.WriteString("  no conflicts in this report\n")
		return b.String()
	}

	lineWidth := max(20, m.width-14)
	for i, it := range m.items {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		side := mineStyle.Render(fmt.Sprintf("%-6s", report.Mine))
		if it.entry.Theirs {
			side = theirsStyle.Render(fmt.Sprintf("%-6s", report.Theirs))
		}
		if it.entry.Theirs != it.theirs {
			side += "*"
		} else {
			side += " "
		}
		label := fmt.Sprintf("%s '%s'", it.path, it.entry.Subject)
		fmt.Fprintf(&b, "%s%s %s\n", marker, side, truncate(label, lineWidth))
		if i == m.cursor && it.entry.Message != "" {
			fmt.Fprintf(&b, "           %s\n", dimStyle.Render(truncate(it.entry.Message, lineWidth)))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ move  m mine  t theirs  space toggle  s save  q quit"))
	b.WriteString("\n")
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// Truncate counts the tail against width.
	return runewidth.Truncate(value, width, "...")
}

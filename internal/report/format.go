package report

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrReportParse is returned when a report file cannot be loaded. A replay
// never falls back to recording on this error.
var ErrReportParse = errors.New("malformed merge report")

const indentUnit = "    "

var (
	overrideRe = regexp.MustCompile(`^/(.*?)\s*\[OVERRIDE:\s*(MINE|THEIRS)\]\s*$`)
	entryRe    = regexp.MustCompile(`^((?:\[(?:CONFLICT|MINE|THEIRS)\]\s*)+)'((?:[^']|'')*)'\s?(.*)$`)
)

// String renders the report in its text form.
func (r *Report) String() string { return r.root.String() }

// String renders the tree at n in the report text form, n as the top
// scope.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, n, "")
	return sb.String()
}

// Write writes the text form to w.
func (r *Report) Write(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}

// WriteFile writes the text form to path.
func (r *Report) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(r.String()), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// writeNode emits a scope only when it or a descendant carries an entry or
// an override.
func writeNode(sb *strings.Builder, n *Node, indent string) bool {
	var children strings.Builder
	has := false
	for _, c := range n.Children {
		has = writeNode(&children, c, indent+indentUnit) || has
	}
	if !has && len(n.Entries) == 0 && n.Override == nil {
		return false
	}

	sb.WriteString(indent)
	sb.WriteString("/")
	sb.WriteString(n.Name)
	if n.Override != nil {
		fmt.Fprintf(sb, " [OVERRIDE: %s]", *n.Override)
	}
	sb.WriteString("\n")
	for _, e := range n.Entries {
		sb.WriteString(indent)
		sb.WriteString(indentUnit)
		if e.Conflict {
			sb.WriteString("[CONFLICT] ")
		}
		fmt.Fprintf(sb, "[%s] '%s'", Side(e.Theirs), strings.ReplaceAll(e.Subject, "'", "''"))
		if e.Message != "" {
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(e.Message, "\n", `\n`))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(children.String())
	return true
}

// Load parses a report written by Write and returns it in Replaying mode.
// Blank lines and lines starting with '#' are ignored.
func Load(rd io.Reader) (*Report, error) {
	root := newNode("")
	stack := []*Node{root}

	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimLeft(line, " ")
		if strings.TrimSpace(trimmed) == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "\t") {
			return nil, fmt.Errorf("%w: line %d: tabs are not allowed in indentation", ErrReportParse, lineNo)
		}
		indent := len(line) - len(trimmed)
		if indent%len(indentUnit) != 0 {
			return nil, fmt.Errorf("%w: line %d: indentation of %d is not a multiple of %d", ErrReportParse, lineNo, indent, len(indentUnit))
		}
		depth := indent / len(indentUnit)
		trimmed = strings.TrimRight(trimmed, " ")

		if strings.HasPrefix(trimmed, "/") {
			name, override := strings.TrimSpace(trimmed[1:]), (*Side)(nil)
			if m := overrideRe.FindStringSubmatch(trimmed); m != nil {
				name = strings.TrimSpace(m[1])
				side := Side(m[2] == "THEIRS")
				override = &side
			}
			if depth == 0 {
				if name != "" {
					return nil, fmt.Errorf("%w: line %d: top-level scope must be \"/\"", ErrReportParse, lineNo)
				}
				root.Override = override
				stack = stack[:1]
				continue
			}
			if name == "" {
				return nil, fmt.Errorf("%w: line %d: empty scope name", ErrReportParse, lineNo)
			}
			if depth > len(stack) {
				return nil, fmt.Errorf("%w: line %d: scope %q is nested too deeply", ErrReportParse, lineNo, name)
			}
			stack = stack[:depth]
			n := stack[depth-1].child(name)
			if override != nil {
				n.Override = override
			}
			stack = append(stack, n)
			continue
		}

		m := entryRe.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, fmt.Errorf("%w: line %d: unrecognized line %q", ErrReportParse, lineNo, trimmed)
		}
		if depth == 0 || depth > len(stack) {
			return nil, fmt.Errorf("%w: line %d: decision is not inside a scope", ErrReportParse, lineNo)
		}
		flags := m[1]
		mine, theirs := strings.Contains(flags, "[MINE]"), strings.Contains(flags, "[THEIRS]")
		if mine == theirs {
			return nil, fmt.Errorf("%w: line %d: exactly one of [MINE] or [THEIRS] is required", ErrReportParse, lineNo)
		}
		stack = stack[:depth]
		owner := stack[depth-1]
		owner.Entries = append(owner.Entries, Entry{
			Subject:  strings.ReplaceAll(m[2], "''", "'"),
			Message:  strings.TrimSpace(m[3]),
			Theirs:   theirs,
			Conflict: strings.Contains(flags, "[CONFLICT]"),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportParse, err)
	}
	return newReplay(root), nil
}

// LoadFile loads a report from path.
func LoadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	r, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

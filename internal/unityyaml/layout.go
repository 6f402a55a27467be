package unityyaml

import (
	"regexp"
	"strings"
)

// wrapWidth is the line length from which the editor splits a
// {fileID, guid, type} reference across two lines.
const wrapWidth = 90

var longRefRe = regexp.MustCompile(`^(\s*(?:- )?[\w.]+: )(\{fileID: -?\d+, guid: \w+,) (type: -?\d+\})$`)

// massage turns yaml.v3 output into the editor's layout: block sequences sit
// at their key's column, empty strings are written bare, and long asset
// references wrap before "type".
func massage(text string) string {
	lines := compactSequences(strings.Split(strings.TrimSuffix(text, "\n"), "\n"))
	var sb strings.Builder
	for i, l := range lines {
		switch {
		case strings.HasSuffix(l, ": ''"):
			l = strings.TrimSuffix(l, "''")
		case strings.TrimSpace(l) == "- ''":
			l = strings.TrimSuffix(l, "''")
		case strings.HasSuffix(l, ":") && emptyValue(lines, i):
			l += " "
		}
		if len(l) >= wrapWidth {
			if m := longRefRe.FindStringSubmatch(l); m != nil {
				l = m[1] + m[2] + "\n" + strings.Repeat(" ", keyColumn(l)+2) + m[3]
			}
		}
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func indentOf(l string) int {
	return len(l) - len(strings.TrimLeft(l, " "))
}

// keyColumn is the column of the key on l, past a leading "- ".
func keyColumn(l string) int {
	ind := indentOf(l)
	if strings.HasPrefix(l[ind:], "- ") {
		return ind + 2
	}
	return ind
}

func isItem(l string) bool {
	t := strings.TrimLeft(l, " ")
	return t == "-" || strings.HasPrefix(t, "- ")
}

// emptyValue reports whether the key ending lines[i] has no nested block.
func emptyValue(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return true
	}
	col, next := keyColumn(lines[i]), lines[i+1]
	ni := indentOf(next)
	return ni < col || (ni == col && !isItem(next))
}

// compactSequences shifts every block sequence that is a mapping value two
// columns left, onto its key's column.
func compactSequences(lines []string) []string {
	out := make([]string, len(lines))
	var keys []int
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = l
			continue
		}
		ind := indentOf(l)
		for len(keys) > 0 && ind <= keys[len(keys)-1] {
			keys = keys[:len(keys)-1]
		}
		out[i] = l[min(2*len(keys), ind):]

		if strings.HasSuffix(l, ":") && i+1 < len(lines) {
			kc := keyColumn(l)
			next := lines[i+1]
			if indentOf(next) == kc+2 && isItem(next) {
				keys = append(keys, kc)
			}
		}
	}
	return out
}

// Package unityyaml reads and writes Unity's text serialization: a YAML 1.1
// stream whose documents are introduced by "--- !u!<classID> &<fileID>"
// headers, optionally suffixed with "stripped". Document bodies are decoded
// with yaml.v3 into docnode trees; output is massaged back into the layout
// the editor writes.
package unityyaml

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/unitymerge/internal/docnode"
)

// ErrMalformed is returned when a file is not a valid Unity text document.
var ErrMalformed = errors.New("malformed unity document")

var headerRe = regexp.MustCompile(`^--- !u!(\d+) &(-?\d+)(?: (stripped))?\s*$`)

// Object is one top-level document of the stream.
type Object struct {
	ClassID  int
	FileID   int64
	Stripped bool
	// Kind is the single root key of the body, e.g. "GameObject".
	Kind string
	// Body is the mapping under Kind.
	Body *docnode.Node
	// Line is the 1-based line of the header, zero for synthesized objects.
	Line int
}

// File is a parsed scene or prefab.
type File struct {
	// Header holds the %YAML / %TAG lines preceding the first document.
	Header []string
	Objects []Object
}

// DefaultHeader is written when a file has no header of its own.
var DefaultHeader = []string{"%YAML 1.1", "%TAG !u! tag:unity3d.com,2011:"}

// ReadFile parses the file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse splits data into documents and decodes each body.
func Parse(data []byte) (*File, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	f := &File{}
	var cur *Object
	var body []string
	flush := func() error {
		if cur == nil {
			return nil
		}
		if err := decodeBody(cur, body); err != nil {
			return err
		}
		f.Objects = append(f.Objects, *cur)
		cur, body = nil, nil
		return nil
	}

	for i, line := range lines {
		if !strings.HasPrefix(line, "---") {
			if cur == nil {
				if strings.TrimSpace(line) != "" {
					f.Header = append(f.Header, line)
				}
				continue
			}
			body = append(body, line)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: line %d: unrecognized document header %q", ErrMalformed, i+1, line)
		}
		classID, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: class id: %v", ErrMalformed, i+1, err)
		}
		fileID, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: file id: %v", ErrMalformed, i+1, err)
		}
		cur = &Object{ClassID: classID, FileID: fileID, Stripped: m[3] != "", Line: i + 1}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeBody(o *Object, lines []string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &doc); err != nil {
		return fmt.Errorf("%w: object &%d (line %d): %v", ErrMalformed, o.FileID, o.Line, err)
	}
	if doc.Kind == 0 {
		return fmt.Errorf("%w: object &%d (line %d) has no body", ErrMalformed, o.FileID, o.Line)
	}
	root, err := docnode.FromYAML(&doc)
	if err != nil {
		return fmt.Errorf("%w: object &%d (line %d): %v", ErrMalformed, o.FileID, o.Line, err)
	}
	if root.Kind != docnode.KindMapping || len(root.Pairs) != 1 {
		return fmt.Errorf("%w: object &%d (line %d) must have exactly one root key", ErrMalformed, o.FileID, o.Line)
	}
	o.Kind = root.Pairs[0].Key
	o.Body = root.Pairs[0].Value
	switch {
	case o.Body.Kind == docnode.KindScalar && o.Body.Value == "":
		o.Body = docnode.Mapping()
	case o.Body.Kind != docnode.KindMapping:
		return fmt.Errorf("%w: object &%d (line %d): %s body is a %s", ErrMalformed, o.FileID, o.Line, o.Kind, o.Body.Kind)
	}
	return nil
}

// Encode renders the file in the editor's layout.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	header := f.Header
	if len(header) == 0 {
		header = DefaultHeader
	}
	for _, h := range header {
		buf.WriteString(h)
		buf.WriteByte('\n')
	}
	for _, o := range f.Objects {
		fmt.Fprintf(&buf, "--- !u!%d &%d", o.ClassID, o.FileID)
		if o.Stripped {
			buf.WriteString(" stripped")
		}
		buf.WriteByte('\n')
		body, err := encodeBody(o)
		if err != nil {
			return nil, err
		}
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes f and writes it to path.
func (f *File) WriteFile(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeBody(o Object) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: o.Kind},
		o.Body.ToYAML(),
	}}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("encode object &%d: %w", o.FileID, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode object &%d: %w", o.FileID, err)
	}
	return massage(buf.String()), nil
}

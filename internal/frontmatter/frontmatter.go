// Package frontmatter parses markdown files with a YAML frontmatter block
// and writes them back byte-faithfully.
//
// A parsed Block keeps the verbatim source text of every top-level entry,
// sliced by the yaml.v3 node line information. Mutations rewrite only the
// entries they name; all other entries — unrecognized keys included — along
// with comments, spacing, and the body are carried through untouched.
// Rendering an unmodified Block reproduces the input bytes exactly.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

const delimiter = "---"

var openingDelimiter = []byte("---\n")

// Split divides file content into raw frontmatter text and body. If the file
// does not start with an opening delimiter the whole content is body and
// present is false. An opened but unclosed block is an error.
//
// The returned frontmatter is newline-terminated; the body is the exact
// bytes following the closing delimiter line.
func Split(data []byte) (fm, body []byte, present bool, err error) {
	if !bytes.HasPrefix(data, openingDelimiter) {
		return nil, data, false, nil
	}

	rest := data[len(openingDelimiter):]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, openingDelimiter) {
		return nil, rest[len(openingDelimiter):], true, nil
	}
	if bytes.Equal(rest, []byte(delimiter)) {
		return nil, nil, true, nil
	}

	if idx := bytes.Index(rest, []byte("\n---\n")); idx >= 0 {
		return rest[:idx+1], rest[idx+len("\n---\n"):], true, nil
	}
	if bytes.HasSuffix(rest, []byte("\n---")) {
		return rest[:len(rest)-len(delimiter)], nil, true, nil
	}

	return nil, nil, false, errors.New("unclosed frontmatter (missing closing ---)")
}

// Entry is one top-level frontmatter key with its verbatim source text.
// The text runs from the key's line up to the line before the next key, so
// interleaved comments and blank lines travel with the preceding entry.
type Entry struct {
	Key  string
	Node *yaml.Node // value node; nil for entries rewritten by a mutation
	text []byte     // newline-terminated source lines
}

// Extra is an entry whose key is outside a known schema.
type Extra struct {
	Key  string
	Node *yaml.Node
}

// Block is a parsed file: frontmatter entries in source order plus the body.
type Block struct {
	entries  []*Entry
	preamble []byte // lines before the first key (comments, blanks)
	body     []byte
	present  bool
	// closingNewline is false only when the closing delimiter sat at EOF
	// without a trailing newline.
	closingNewline bool
	root           *yaml.Node // mapping node, nil for empty frontmatter
}

// Parse splits data and parses the frontmatter block into ordered entries.
func Parse(data []byte) (*Block, error) {
	fm, body, present, err := Split(data)
	if err != nil {
		return nil, err
	}

	b := &Block{body: body, present: present, closingNewline: true}
	if present && body == nil && !bytes.HasSuffix(data, []byte("\n")) {
		b.closingNewline = false
	}
	if len(fm) == 0 {
		return b, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	if len(doc.Content) == 0 {
		// Whitespace/comment-only block.
		b.preamble = fm
		return b, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("frontmatter is not a key-value mapping")
	}
	if root.Style == yaml.FlowStyle {
		return nil, errors.New("flow-style frontmatter mapping is not supported")
	}
	b.root = root

	lines := splitLines(fm)
	firstLine := root.Content[0].Line
	if firstLine > 1 {
		b.preamble = joinLines(lines[:firstLine-1])
	}

	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		start := key.Line
		end := len(lines) + 1
		if i+2 < len(root.Content) {
			end = root.Content[i+2].Line
		}

		b.entries = append(b.entries, &Entry{
			Key:  key.Value,
			Node: val,
			text: joinLines(lines[start-1 : end-1]),
		})
	}

	return b, nil
}

// Present reports whether the source file had a frontmatter block.
func (b *Block) Present() bool { return b.present }

// Body returns the body bytes verbatim.
func (b *Block) Body() []byte { return b.body }

// SetBody replaces the body.
func (b *Block) SetBody(body []byte) { b.body = body }

// Keys returns the top-level keys in source order.
func (b *Block) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value node for key, or nil if absent or rewritten.
func (b *Block) Get(key string) *yaml.Node {
	for _, e := range b.entries {
		if e.Key == key {
			return e.Node
		}
	}
	return nil
}

// Has reports whether key is present.
func (b *Block) Has(key string) bool {
	for _, e := range b.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

// Decode unmarshals the whole frontmatter mapping into out.
func (b *Block) Decode(out any) error {
	if b.root == nil {
		return nil
	}
	if err := b.root.Decode(out); err != nil {
		return fmt.Errorf("parsing frontmatter: %w", err)
	}
	return nil
}

// Extras returns the entries whose keys are not in known, in source order.
func (b *Block) Extras(known map[string]bool) []Extra {
	var extras []Extra
	for _, e := range b.entries {
		if !known[e.Key] {
			extras = append(extras, Extra{Key: e.Key, Node: e.Node})
		}
	}
	return extras
}

// SetString sets key to a string scalar, replacing the entry's source text.
// Absent keys are appended at the end of the block.
func (b *Block) SetString(key, value string) error {
	rendered, err := renderScalar(value)
	if err != nil {
		return err
	}
	b.setText(key, []byte(key+": "+rendered+"\n"))
	return nil
}

// SetStringList sets key to a flow-style list of string scalars.
func (b *Block) SetStringList(key string, items []string) error {
	parts := make([]string, len(items))
	for i, item := range items {
		rendered, err := renderScalar(item)
		if err != nil {
			return err
		}
		parts[i] = rendered
	}
	b.setText(key, []byte(key+": ["+strings.Join(parts, ", ")+"]\n"))
	return nil
}

// Remove deletes key and its source text. Returns true if the key existed.
func (b *Block) Remove(key string) bool {
	for i, e := range b.entries {
		if e.Key == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Block) setText(key string, text []byte) {
	for _, e := range b.entries {
		if e.Key == key {
			e.text = text
			e.Node = nil
			return
		}
	}
	b.entries = append(b.entries, &Entry{Key: key, text: text})
	b.present = true
	b.closingNewline = true
}

// Render serializes the block back to file content. An unmodified block
// reproduces the original bytes.
func (b *Block) Render() []byte {
	if !b.present {
		return b.body
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteString("\n")
	buf.Write(b.preamble)
	for _, e := range b.entries {
		buf.Write(e.text)
	}
	buf.WriteString(delimiter)
	if b.closingNewline {
		buf.WriteString("\n")
	}
	buf.Write(b.body)
	return buf.Bytes()
}

// renderScalar renders a string as a single-line YAML scalar, quoting when
// the plain form would be ambiguous.
func renderScalar(s string) (string, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("rendering scalar: %w", err)
	}
	rendered := strings.TrimRight(string(out), "\n")
	if strings.Contains(rendered, "\n") {
		// The encoder chose a block scalar; force an escaped quoted form.
		node.Style = yaml.DoubleQuotedStyle
		out, err = yaml.Marshal(node)
		if err != nil {
			return "", fmt.Errorf("rendering scalar: %w", err)
		}
		rendered = strings.TrimRight(string(out), "\n")
	}
	return rendered, nil
}

// splitLines splits text into lines, each retaining its trailing newline.
func splitLines(text []byte) [][]byte {
	var lines [][]byte
	for len(text) > 0 {
		idx := bytes.IndexByte(text, '\n')
		if idx < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
	}
	return lines
}

func joinLines(lines [][]byte) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(l)
	}
	return buf.Bytes()
}

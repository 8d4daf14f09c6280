// Package ref provides the cross-entity reference type. A reference is
// written in one of three styles — wikilink by title, relative path, or bare
// filename — and the style found in the source text is preserved on write.
package ref

import (
	"encoding/json"
	"errors"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Style identifies how a reference is written in the source file.
type Style int

const (
	// StyleTitle is a bracketed wikilink: [[Title]] or [[Title|Display]].
	StyleTitle Style = iota
	// StylePath is a path relative to the vault root: projects/house.md.
	StylePath
	// StyleFilename is a bare filename: house.md.
	StyleFilename
)

// Ref points at another entity. The zero Ref means "no reference".
type Ref struct {
	style   Style
	target  string // title text, relative path, or filename
	display string // optional display override for StyleTitle
}

// ByTitle creates a wikilink reference.
func ByTitle(title string) Ref {
	return Ref{style: StyleTitle, target: title}
}

// ByTitleDisplay creates a wikilink reference with a display override.
func ByTitleDisplay(title, display string) Ref {
	return Ref{style: StyleTitle, target: title, display: display}
}

// ByPath creates a relative-path reference.
func ByPath(path string) Ref {
	return Ref{style: StylePath, target: path}
}

// ByFilename creates a bare-filename reference.
func ByFilename(name string) Ref {
	return Ref{style: StyleFilename, target: name}
}

// Parse parses a reference string. Bracketed forms are by-title, strings
// containing a path separator are relative paths, everything else is a bare
// filename.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, errors.New("empty reference")
	}

	if strings.HasPrefix(s, "[[") {
		if !strings.HasSuffix(s, "]]") {
			return Ref{}, errors.New("unterminated wikilink (missing ]])")
		}
		inner := s[2 : len(s)-2]
		title, display, hasDisplay := strings.Cut(inner, "|")
		title = strings.TrimSpace(title)
		if title == "" {
			return Ref{}, errors.New("empty wikilink title")
		}
		r := Ref{style: StyleTitle, target: title}
		if hasDisplay {
			r.display = strings.TrimSpace(display)
		}
		return r, nil
	}

	if strings.ContainsRune(s, '/') {
		return Ref{style: StylePath, target: s}, nil
	}

	return Ref{style: StyleFilename, target: s}, nil
}

// IsZero reports whether the reference is absent.
func (r Ref) IsZero() bool {
	return r.target == ""
}

// Style returns the reference style.
func (r Ref) Style() Style {
	return r.style
}

// Target returns the title text, relative path, or filename.
func (r Ref) Target() string {
	return r.target
}

// Display returns the display override for by-title references, or "".
func (r Ref) Display() string {
	return r.display
}

// String re-emits the reference in its original style.
func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	if r.style == StyleTitle {
		if r.display != "" {
			return "[[" + r.target + "|" + r.display + "]]"
		}
		return "[[" + r.target + "]]"
	}
	return r.target
}

// MarshalYAML implements yaml.Marshaler.
func (r Ref) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler. Null and empty nodes decode
// to the zero (absent) reference.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" {
		*r = Ref{}
		return nil
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*r = Ref{}
		return nil
	}
	parsed, err := Parse(*s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

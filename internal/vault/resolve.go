package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/ref"
)

// Resolve turns a reference into the file path of the entity it points at.
// By-title references scan the kind's directory for a case-insensitive title
// match and fail on zero or multiple hits. Path references resolve against
// the vault root, filename references against the kind's directory (tasks
// also check the archive). The resolved file must exist.
func (v *Vault) Resolve(kind entity.Kind, r ref.Ref) (string, error) {
	if r.IsZero() {
		return "", clierr.New(clierr.InvalidReference, "empty reference")
	}

	switch r.Style() {
	case ref.StyleTitle:
		return v.resolveByTitle(kind, r.Target())
	case ref.StylePath:
		loc := filepath.Join(v.paths.Root, r.Target())
		if _, err := os.Stat(loc); err != nil {
			return "", brokenRef(r, err)
		}
		return loc, nil
	case ref.StyleFilename:
		for _, dir := range v.kindDirs(kind) {
			loc := filepath.Join(dir, r.Target())
			if _, err := os.Stat(loc); err == nil {
				return loc, nil
			}
		}
		return "", brokenRef(r, os.ErrNotExist)
	}
	return "", clierr.Newf(clierr.InvalidReference, "unknown reference style for %q", r.String())
}

// ResolveProject resolves a project reference.
func (v *Vault) ResolveProject(r ref.Ref) (string, error) {
	return v.Resolve(entity.KindProject, r)
}

// ResolveArea resolves an area reference.
func (v *Vault) ResolveArea(r ref.Ref) (string, error) {
	return v.Resolve(entity.KindArea, r)
}

// resolveByTitle scans the kind's directory leniently and matches titles
// case-insensitively. Files that fail to parse cannot match.
func (v *Vault) resolveByTitle(kind entity.Kind, title string) (string, error) {
	var matches []string
	for _, dir := range v.kindDirs(kind) {
		paths, err := listMarkdownFiles([]string{dir})
		if err != nil {
			return "", err
		}
		for _, path := range paths {
			t, err := v.titleOf(kind, path)
			if err != nil {
				continue
			}
			if strings.EqualFold(t, title) {
				matches = append(matches, path)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", clierr.Newf(clierr.BrokenReference, "no %s titled %q", kind, title).
			WithDetails(map[string]any{"title": title})
	case 1:
		return matches[0], nil
	default:
		rels := make([]string, len(matches))
		for i, m := range matches {
			rels[i] = v.rel(m)
		}
		return "", clierr.Newf(clierr.AmbiguousReference, "%d %ss titled %q", len(matches), kind, title).
			WithDetails(map[string]any{"title": title, "candidates": rels})
	}
}

func (v *Vault) titleOf(kind entity.Kind, path string) (string, error) {
	switch kind {
	case entity.KindTask:
		t, err := v.GetTask(path)
		if err != nil {
			return "", err
		}
		return t.Title, nil
	case entity.KindProject:
		p, err := v.GetProject(path)
		if err != nil {
			return "", err
		}
		return p.Title, nil
	case entity.KindArea:
		a, err := v.GetArea(path)
		if err != nil {
			return "", err
		}
		return a.Title, nil
	}
	return "", clierr.Newf(clierr.InternalError, "unknown entity kind %q", kind)
}

// kindDirs returns the directories a kind's entities may live in. Tasks also
// live under the archive.
func (v *Vault) kindDirs(kind entity.Kind) []string {
	switch kind {
	case entity.KindTask:
		return []string{v.paths.Tasks, v.paths.TasksArchive}
	case entity.KindProject:
		return []string{v.paths.Projects}
	case entity.KindArea:
		return []string{v.paths.Areas}
	}
	return nil
}

func brokenRef(r ref.Ref, err error) error {
	if err != nil && !os.IsNotExist(err) {
		return clierr.Newf(clierr.InternalError, "%v", err)
	}
	return clierr.Newf(clierr.BrokenReference, "reference target does not exist: %s", r.String()).
		WithDetails(map[string]any{"reference": r.String()})
}

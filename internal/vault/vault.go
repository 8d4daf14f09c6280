// Package vault is the entity engine: it scans the managed directories into
// typed records, merges update patches back into files byte-faithfully, and
// implements the lifecycle operations (create, update, archive, delete).
//
// The vault holds no cache and no cross-process coordination: every
// operation re-reads the files it touches.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/frontmatter"
)

const dirMode = 0o750

// Paths is the immutable directory context threaded into every operation.
// All paths are absolute; TasksArchive is nested under Tasks.
type Paths struct {
	Root         string
	Tasks        string
	TasksArchive string
	Projects     string
	Areas        string
}

// DefaultPaths returns the conventional layout under a vault root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:         root,
		Tasks:        filepath.Join(root, "tasks"),
		TasksArchive: filepath.Join(root, "tasks", "archive"),
		Projects:     filepath.Join(root, "projects"),
		Areas:        filepath.Join(root, "areas"),
	}
}

// Options tune vault behavior.
type Options struct {
	// Workers bounds the scan worker pool; 0 picks a default.
	Workers int
	// ClearCompletedOnReopen clears the completion timestamp when a
	// terminal task or project is reopened.
	ClearCompletedOnReopen bool
	// ReferentialChecks makes updates fail when a patched reference does
	// not resolve.
	ReferentialChecks bool
}

// Vault provides typed access to the entity files under Paths.
type Vault struct {
	paths Paths
	opts  Options
}

// New creates a Vault over the given directories.
func New(paths Paths, opts Options) *Vault {
	return &Vault{paths: paths, opts: opts}
}

// Paths returns the directory context.
func (v *Vault) Paths() Paths { return v.paths }

// WatchedPaths enumerates the directories an external watcher should
// observe.
func (v *Vault) WatchedPaths() []string {
	return []string{v.paths.Tasks, v.paths.TasksArchive, v.paths.Projects, v.paths.Areas}
}

// KindOf classifies a file path by the managed directory containing it.
// Returns false for paths outside the managed directories or non-markdown
// files.
func (v *Vault) KindOf(path string) (entity.Kind, bool) {
	if filepath.Ext(path) != ".md" {
		return "", false
	}
	switch filepath.Dir(v.abs(path)) {
	case v.paths.Tasks, v.paths.TasksArchive:
		return entity.KindTask, true
	case v.paths.Projects:
		return entity.KindProject, true
	case v.paths.Areas:
		return entity.KindArea, true
	}
	return "", false
}

// IsArchivedLocation reports whether a task location is under the archive
// sub-path. Task archival is a location fact, never a status value.
func (v *Vault) IsArchivedLocation(path string) bool {
	return filepath.Dir(v.abs(path)) == v.paths.TasksArchive
}

// GetTask reads and parses a single task.
func (v *Vault) GetTask(location string) (*entity.Task, error) {
	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	t, err := entity.ParseTask(data)
	if err != nil {
		return nil, err
	}
	t.Location = loc
	return t, nil
}

// GetProject reads and parses a single project.
func (v *Vault) GetProject(location string) (*entity.Project, error) {
	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	p, err := entity.ParseProject(data)
	if err != nil {
		return nil, err
	}
	p.Location = loc
	return p, nil
}

// GetArea reads and parses a single area.
func (v *Vault) GetArea(location string) (*entity.Area, error) {
	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	a, err := entity.ParseArea(data)
	if err != nil {
		return nil, err
	}
	a.Location = loc
	return a, nil
}

// DeleteTask removes a task file. Irreversible.
func (v *Vault) DeleteTask(location string) error {
	return v.remove(v.abs(location))
}

// DeleteProject removes a project file. Irreversible.
func (v *Vault) DeleteProject(location string) error {
	return v.remove(v.abs(location))
}

// DeleteArea removes an area file. Irreversible.
func (v *Vault) DeleteArea(location string) error {
	return v.remove(v.abs(location))
}

func (v *Vault) remove(loc string) error {
	if err := os.Remove(loc); err != nil {
		return v.fsError(loc, err)
	}
	return nil
}

// abs normalizes a location: relative locations are resolved against the
// vault root.
func (v *Vault) abs(location string) string {
	if filepath.IsAbs(location) {
		return filepath.Clean(location)
	}
	return filepath.Join(v.paths.Root, location)
}

// readFile reads a file and maps filesystem errors to typed failures.
func (v *Vault) readFile(loc string) ([]byte, error) {
	data, err := os.ReadFile(loc) //nolint:gosec // entity path from trusted source
	if err != nil {
		return nil, v.fsError(loc, err)
	}
	return data, nil
}

// fsError maps an os error to a typed clierr failure.
func (v *Vault) fsError(loc string, err error) error {
	rel := v.rel(loc)
	switch {
	case os.IsNotExist(err):
		return clierr.Newf(clierr.NotFound, "no such entity: %s", rel).
			WithDetails(map[string]any{"location": rel})
	case os.IsPermission(err):
		return clierr.Newf(clierr.PermissionDenied, "permission denied: %s", rel).
			WithDetails(map[string]any{"location": rel})
	default:
		return clierr.Newf(clierr.InternalError, "%v", err)
	}
}

// rel returns a location relative to the vault root when possible.
func (v *Vault) rel(loc string) string {
	if r, err := filepath.Rel(v.paths.Root, loc); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return loc
}

// parseBlock wraps frontmatter parsing with the typed error code.
func parseBlock(data []byte) (*frontmatter.Block, error) {
	block, err := frontmatter.Parse(data)
	if err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}
	return block, nil
}

const maxSlugLength = 50

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a title to a filename-friendly slug.
func Slug(title string) string {
	slug := strings.ToLower(title)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		// Truncate at word boundary.
		truncated := slug[:maxSlugLength]
		// Only trim to last hyphen if we cut mid-word.
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndex(truncated, "-"); idx > 0 {
				truncated = truncated[:idx]
			}
		}
		slug = strings.TrimRight(truncated, "-")
	}

	return slug
}

// filename derives the on-disk name for a new entity: an explicit name when
// given, otherwise the title slug.
func filename(title, explicit string) (string, error) {
	name := explicit
	if name == "" {
		name = Slug(title)
		if name == "" {
			return "", clierr.Newf(clierr.InvalidInput, "title %q yields an empty filename", title)
		}
	}
	if filepath.Base(name) != name {
		return "", clierr.Newf(clierr.InvalidInput, "filename %q must not contain path separators", name)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/frontmatter"
)

// CreateOptions tune entity creation.
type CreateOptions struct {
	// Filename overrides the title-derived filename. A ".md" extension is
	// appended when missing.
	Filename string
}

// CreateTask writes a new task file. The location is derived from the title
// slug unless an explicit filename is given; an existing file at the target
// location is a collision, never overwritten. The creation timestamp is set
// once here and never altered afterwards; no completion timestamp is set.
func (v *Vault) CreateTask(t *entity.Task, opts CreateOptions) (*entity.Task, error) {
	if t.Title == "" {
		return nil, clierr.New(clierr.MissingField, "task is missing required field: title")
	}
	status := t.Status
	if status == "" {
		status = entity.TaskReady
	}
	if _, err := entity.ParseTaskStatus(string(status)); err != nil {
		return nil, err
	}
	if v.opts.ReferentialChecks {
		if !t.Project.IsZero() {
			if _, err := v.ResolveProject(t.Project); err != nil {
				return nil, err
			}
		}
		if !t.Area.IsZero() {
			if _, err := v.ResolveArea(t.Area); err != nil {
				return nil, err
			}
		}
	}

	block := &frontmatter.Block{}
	if t.Discriminator != "" {
		if err := block.SetString(entity.DiscriminatorKey, t.Discriminator); err != nil {
			return nil, err
		}
	}
	if err := block.SetString("title", t.Title); err != nil {
		return nil, err
	}
	if err := block.SetString("status", string(status)); err != nil {
		return nil, err
	}
	if !t.Project.IsZero() {
		if err := block.SetString("project", t.Project.String()); err != nil {
			return nil, err
		}
	}
	if !t.Area.IsZero() {
		if err := block.SetString("area", t.Area.String()); err != nil {
			return nil, err
		}
	}
	if !t.Due.IsZero() {
		if err := block.SetString("due", t.Due.String()); err != nil {
			return nil, err
		}
	}
	if len(t.Tags) > 0 {
		if err := block.SetStringList("tags", t.Tags); err != nil {
			return nil, err
		}
	}
	now := dateval.Now()
	if err := block.SetString("created", now.String()); err != nil {
		return nil, err
	}
	if err := block.SetString("updated", now.String()); err != nil {
		return nil, err
	}
	block.SetBody(renderBody(t.Body))

	loc, err := v.writeNew(v.paths.Tasks, t.Title, opts.Filename, block)
	if err != nil {
		return nil, err
	}
	return v.GetTask(loc)
}

// CreateProject writes a new project file. Status defaults to planned.
func (v *Vault) CreateProject(p *entity.Project, opts CreateOptions) (*entity.Project, error) {
	if p.Title == "" {
		return nil, clierr.New(clierr.MissingField, "project is missing required field: title")
	}
	status := p.Status
	if status == "" {
		status = entity.ProjectPlanned
	}
	if _, err := entity.ParseProjectStatus(string(status)); err != nil {
		return nil, err
	}
	if v.opts.ReferentialChecks && !p.Area.IsZero() {
		if _, err := v.ResolveArea(p.Area); err != nil {
			return nil, err
		}
	}

	block := &frontmatter.Block{}
	if p.Discriminator != "" {
		if err := block.SetString(entity.DiscriminatorKey, p.Discriminator); err != nil {
			return nil, err
		}
	}
	if err := block.SetString("title", p.Title); err != nil {
		return nil, err
	}
	if err := block.SetString("status", string(status)); err != nil {
		return nil, err
	}
	if !p.Area.IsZero() {
		if err := block.SetString("area", p.Area.String()); err != nil {
			return nil, err
		}
	}
	if !p.Due.IsZero() {
		if err := block.SetString("due", p.Due.String()); err != nil {
			return nil, err
		}
	}
	if len(p.Tags) > 0 {
		if err := block.SetStringList("tags", p.Tags); err != nil {
			return nil, err
		}
	}
	now := dateval.Now()
	if err := block.SetString("created", now.String()); err != nil {
		return nil, err
	}
	if err := block.SetString("updated", now.String()); err != nil {
		return nil, err
	}
	block.SetBody(renderBody(p.Body))

	loc, err := v.writeNew(v.paths.Projects, p.Title, opts.Filename, block)
	if err != nil {
		return nil, err
	}
	return v.GetProject(loc)
}

// CreateArea writes a new area file. Status defaults to active.
func (v *Vault) CreateArea(a *entity.Area, opts CreateOptions) (*entity.Area, error) {
	if a.Title == "" {
		return nil, clierr.New(clierr.MissingField, "area is missing required field: title")
	}
	status := a.Status
	if status == "" {
		status = entity.AreaActive
	}
	if _, err := entity.ParseAreaStatus(string(status)); err != nil {
		return nil, err
	}

	block := &frontmatter.Block{}
	if a.Discriminator != "" {
		if err := block.SetString(entity.DiscriminatorKey, a.Discriminator); err != nil {
			return nil, err
		}
	}
	if err := block.SetString("title", a.Title); err != nil {
		return nil, err
	}
	if err := block.SetString("status", string(status)); err != nil {
		return nil, err
	}
	if len(a.Tags) > 0 {
		if err := block.SetStringList("tags", a.Tags); err != nil {
			return nil, err
		}
	}
	now := dateval.Now()
	if err := block.SetString("created", now.String()); err != nil {
		return nil, err
	}
	if err := block.SetString("updated", now.String()); err != nil {
		return nil, err
	}
	block.SetBody(renderBody(a.Body))

	loc, err := v.writeNew(v.paths.Areas, a.Title, opts.Filename, block)
	if err != nil {
		return nil, err
	}
	return v.GetArea(loc)
}

// writeNew derives the target location, fails on collision, and writes the
// rendered block atomically.
func (v *Vault) writeNew(dir, title, explicit string, block *frontmatter.Block) (string, error) {
	name, err := filename(title, explicit)
	if err != nil {
		return "", err
	}
	loc := filepath.Join(dir, name)

	if _, err := os.Stat(loc); err == nil {
		return "", clierr.Newf(clierr.LocationCollision, "entity already exists: %s", v.rel(loc)).
			WithDetails(map[string]any{"location": v.rel(loc)})
	} else if !os.IsNotExist(err) {
		return "", v.fsError(loc, err)
	}

	if err := ensureDir(dir); err != nil {
		return "", err
	}
	if err := atomic.WriteFile(loc, bytes.NewReader(block.Render())); err != nil {
		return "", v.fsError(loc, err)
	}
	return loc, nil
}

// renderBody normalizes the body of a newly created file: a blank line
// after the frontmatter and a trailing newline.
func renderBody(body string) []byte {
	if body == "" {
		return nil
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return []byte("\n" + body)
}

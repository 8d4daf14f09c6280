package entity

import (
	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/ref"
)

// TaskPatch describes field changes for a task update. Untouched fields
// default to unchanged; setters mark set-to; Clear* methods mark cleared.
type TaskPatch struct {
	Title   Change[string]
	Status  Change[TaskStatus]
	Project Change[ref.Ref]
	Area    Change[ref.Ref]
	Due     Change[dateval.Value]
	Tags    Change[[]string]
	Body    Change[string]
}

// NewTaskPatch returns an empty patch; every field starts unchanged.
func NewTaskPatch() *TaskPatch { return &TaskPatch{} }

// SetTitle sets the title.
func (p *TaskPatch) SetTitle(title string) *TaskPatch {
	p.Title = SetTo(title)
	return p
}

// SetStatus sets the status.
func (p *TaskPatch) SetStatus(s TaskStatus) *TaskPatch {
	p.Status = SetTo(s)
	return p
}

// SetProject sets the project reference.
func (p *TaskPatch) SetProject(r ref.Ref) *TaskPatch {
	p.Project = SetTo(r)
	return p
}

// ClearProject removes the project reference.
func (p *TaskPatch) ClearProject() *TaskPatch {
	p.Project = Clear[ref.Ref]()
	return p
}

// SetArea sets the area reference.
func (p *TaskPatch) SetArea(r ref.Ref) *TaskPatch {
	p.Area = SetTo(r)
	return p
}

// ClearArea removes the area reference.
func (p *TaskPatch) ClearArea() *TaskPatch {
	p.Area = Clear[ref.Ref]()
	return p
}

// SetDue sets the due date.
func (p *TaskPatch) SetDue(v dateval.Value) *TaskPatch {
	p.Due = SetTo(v)
	return p
}

// ClearDue removes the due date.
func (p *TaskPatch) ClearDue() *TaskPatch {
	p.Due = Clear[dateval.Value]()
	return p
}

// SetTags replaces the tag list.
func (p *TaskPatch) SetTags(tags []string) *TaskPatch {
	p.Tags = SetTo(tags)
	return p
}

// ClearTags removes the tag list.
func (p *TaskPatch) ClearTags() *TaskPatch {
	p.Tags = Clear[[]string]()
	return p
}

// SetBody replaces the markdown body.
func (p *TaskPatch) SetBody(body string) *TaskPatch {
	p.Body = SetTo(body)
	return p
}

// Empty reports whether the patch changes nothing.
func (p *TaskPatch) Empty() bool {
	return p.Title.IsUnchanged() && p.Status.IsUnchanged() &&
		p.Project.IsUnchanged() && p.Area.IsUnchanged() &&
		p.Due.IsUnchanged() && p.Tags.IsUnchanged() && p.Body.IsUnchanged()
}

// Validate rejects patches that clear a required field.
func (p *TaskPatch) Validate() error {
	if p.Title.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: title")
	}
	if p.Status.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: status")
	}
	return nil
}

// ProjectPatch describes field changes for a project update.
type ProjectPatch struct {
	Title  Change[string]
	Status Change[ProjectStatus]
	Area   Change[ref.Ref]
	Due    Change[dateval.Value]
	Tags   Change[[]string]
	Body   Change[string]
}

// NewProjectPatch returns an empty patch.
func NewProjectPatch() *ProjectPatch { return &ProjectPatch{} }

// SetTitle sets the title.
func (p *ProjectPatch) SetTitle(title string) *ProjectPatch {
	p.Title = SetTo(title)
	return p
}

// SetStatus sets the status.
func (p *ProjectPatch) SetStatus(s ProjectStatus) *ProjectPatch {
	p.Status = SetTo(s)
	return p
}

// SetArea sets the area reference.
func (p *ProjectPatch) SetArea(r ref.Ref) *ProjectPatch {
	p.Area = SetTo(r)
	return p
}

// ClearArea removes the area reference.
func (p *ProjectPatch) ClearArea() *ProjectPatch {
	p.Area = Clear[ref.Ref]()
	return p
}

// SetDue sets the due date.
func (p *ProjectPatch) SetDue(v dateval.Value) *ProjectPatch {
	p.Due = SetTo(v)
	return p
}

// ClearDue removes the due date.
func (p *ProjectPatch) ClearDue() *ProjectPatch {
	p.Due = Clear[dateval.Value]()
	return p
}

// SetTags replaces the tag list.
func (p *ProjectPatch) SetTags(tags []string) *ProjectPatch {
	p.Tags = SetTo(tags)
	return p
}

// ClearTags removes the tag list.
func (p *ProjectPatch) ClearTags() *ProjectPatch {
	p.Tags = Clear[[]string]()
	return p
}

// SetBody replaces the markdown body.
func (p *ProjectPatch) SetBody(body string) *ProjectPatch {
	p.Body = SetTo(body)
	return p
}

// Empty reports whether the patch changes nothing.
func (p *ProjectPatch) Empty() bool {
	return p.Title.IsUnchanged() && p.Status.IsUnchanged() &&
		p.Area.IsUnchanged() && p.Due.IsUnchanged() &&
		p.Tags.IsUnchanged() && p.Body.IsUnchanged()
}

// Validate rejects patches that clear a required field.
func (p *ProjectPatch) Validate() error {
	if p.Title.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: title")
	}
	if p.Status.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: status")
	}
	return nil
}

// AreaPatch describes field changes for an area update.
type AreaPatch struct {
	Title  Change[string]
	Status Change[AreaStatus]
	Tags   Change[[]string]
	Body   Change[string]
}

// NewAreaPatch returns an empty patch.
func NewAreaPatch() *AreaPatch { return &AreaPatch{} }

// SetTitle sets the title.
func (p *AreaPatch) SetTitle(title string) *AreaPatch {
	p.Title = SetTo(title)
	return p
}

// SetStatus sets the status.
func (p *AreaPatch) SetStatus(s AreaStatus) *AreaPatch {
	p.Status = SetTo(s)
	return p
}

// SetTags replaces the tag list.
func (p *AreaPatch) SetTags(tags []string) *AreaPatch {
	p.Tags = SetTo(tags)
	return p
}

// ClearTags removes the tag list.
func (p *AreaPatch) ClearTags() *AreaPatch {
	p.Tags = Clear[[]string]()
	return p
}

// SetBody replaces the markdown body.
func (p *AreaPatch) SetBody(body string) *AreaPatch {
	p.Body = SetTo(body)
	return p
}

// Empty reports whether the patch changes nothing.
func (p *AreaPatch) Empty() bool {
	return p.Title.IsUnchanged() && p.Status.IsUnchanged() &&
		p.Tags.IsUnchanged() && p.Body.IsUnchanged()
}

// Validate rejects patches that clear a required field.
func (p *AreaPatch) Validate() error {
	if p.Title.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: title")
	}
	if p.Status.IsCleared() {
		return clierr.New(clierr.MissingField, "cannot clear required field: status")
	}
	return nil
}

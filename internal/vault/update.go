package vault

import (
	"bytes"

	"github.com/natefinch/atomic"

	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/frontmatter"
	"github.com/fernwood-software/tend/internal/query"
	"github.com/fernwood-software/tend/internal/ref"
)

// UpdateTask merges a patch into a task file. Only the patched fields are
// rewritten; every other byte of the file, unknown keys and comments
// included, is preserved. An empty patch leaves the file untouched.
func (v *Vault) UpdateTask(location string, patch *entity.TaskPatch) (*entity.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Status.IsSet() {
		if _, err := entity.ParseTaskStatus(string(patch.Status.Value())); err != nil {
			return nil, err
		}
	}

	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	block, err := parseBlock(data)
	if err != nil {
		return nil, err
	}
	current, err := entity.TaskFromBlock(block)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		current.Location = loc
		return current, nil
	}

	if v.opts.ReferentialChecks {
		if patch.Project.IsSet() {
			if _, err := v.ResolveProject(patch.Project.Value()); err != nil {
				return nil, err
			}
		}
		if patch.Area.IsSet() {
			if _, err := v.ResolveArea(patch.Area.Value()); err != nil {
				return nil, err
			}
		}
	}

	if patch.Title.IsSet() {
		if err := block.SetString("title", patch.Title.Value()); err != nil {
			return nil, err
		}
	}
	if patch.Status.IsSet() {
		next := patch.Status.Value()
		if err := block.SetString("status", string(next)); err != nil {
			return nil, err
		}
		if err := v.adjustCompleted(block, next.Terminal(), current.Status.Terminal(), current.Completed); err != nil {
			return nil, err
		}
	}
	if err := applyRef(block, "project", patch.Project); err != nil {
		return nil, err
	}
	if err := applyRef(block, "area", patch.Area); err != nil {
		return nil, err
	}
	if err := applyDate(block, "due", patch.Due); err != nil {
		return nil, err
	}
	if err := applyTags(block, patch.Tags); err != nil {
		return nil, err
	}
	if patch.Body.IsSet() {
		block.SetBody(renderBody(patch.Body.Value()))
	}
	if err := block.SetString("updated", dateval.Now().String()); err != nil {
		return nil, err
	}

	if err := atomic.WriteFile(loc, bytes.NewReader(block.Render())); err != nil {
		return nil, v.fsError(loc, err)
	}
	return v.GetTask(loc)
}

// UpdateProject merges a patch into a project file.
func (v *Vault) UpdateProject(location string, patch *entity.ProjectPatch) (*entity.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Status.IsSet() {
		if _, err := entity.ParseProjectStatus(string(patch.Status.Value())); err != nil {
			return nil, err
		}
	}

	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	block, err := parseBlock(data)
	if err != nil {
		return nil, err
	}
	current, err := entity.ProjectFromBlock(block)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		current.Location = loc
		return current, nil
	}

	if v.opts.ReferentialChecks && patch.Area.IsSet() {
		if _, err := v.ResolveArea(patch.Area.Value()); err != nil {
			return nil, err
		}
	}

	if patch.Title.IsSet() {
		if err := block.SetString("title", patch.Title.Value()); err != nil {
			return nil, err
		}
	}
	if patch.Status.IsSet() {
		next := patch.Status.Value()
		if err := block.SetString("status", string(next)); err != nil {
			return nil, err
		}
		if err := v.adjustCompleted(block, next.Terminal(), current.Status.Terminal(), current.Completed); err != nil {
			return nil, err
		}
	}
	if err := applyRef(block, "area", patch.Area); err != nil {
		return nil, err
	}
	if err := applyDate(block, "due", patch.Due); err != nil {
		return nil, err
	}
	if err := applyTags(block, patch.Tags); err != nil {
		return nil, err
	}
	if patch.Body.IsSet() {
		block.SetBody(renderBody(patch.Body.Value()))
	}
	if err := block.SetString("updated", dateval.Now().String()); err != nil {
		return nil, err
	}

	if err := atomic.WriteFile(loc, bytes.NewReader(block.Render())); err != nil {
		return nil, v.fsError(loc, err)
	}
	return v.GetProject(loc)
}

// UpdateArea merges a patch into an area file.
func (v *Vault) UpdateArea(location string, patch *entity.AreaPatch) (*entity.Area, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Status.IsSet() {
		if _, err := entity.ParseAreaStatus(string(patch.Status.Value())); err != nil {
			return nil, err
		}
	}

	loc := v.abs(location)
	data, err := v.readFile(loc)
	if err != nil {
		return nil, err
	}
	block, err := parseBlock(data)
	if err != nil {
		return nil, err
	}
	current, err := entity.AreaFromBlock(block)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		current.Location = loc
		return current, nil
	}

	if patch.Title.IsSet() {
		if err := block.SetString("title", patch.Title.Value()); err != nil {
			return nil, err
		}
	}
	if patch.Status.IsSet() {
		if err := block.SetString("status", string(patch.Status.Value())); err != nil {
			return nil, err
		}
	}
	if err := applyTags(block, patch.Tags); err != nil {
		return nil, err
	}
	if patch.Body.IsSet() {
		block.SetBody(renderBody(patch.Body.Value()))
	}
	if err := block.SetString("updated", dateval.Now().String()); err != nil {
		return nil, err
	}

	if err := atomic.WriteFile(loc, bytes.NewReader(block.Render())); err != nil {
		return nil, v.fsError(loc, err)
	}
	return v.GetArea(loc)
}

// adjustCompleted maintains the completion timestamp across a status change.
// Entering a terminal status stamps it once and never overwrites an existing
// value. Leaving a terminal status clears it when the vault is configured to.
func (v *Vault) adjustCompleted(block *frontmatter.Block, nextTerminal, wasTerminal bool, completed dateval.Value) error {
	switch {
	case nextTerminal && completed.IsZero():
		return block.SetString("completed", dateval.Now().String())
	case !nextTerminal && wasTerminal && v.opts.ClearCompletedOnReopen:
		block.Remove("completed")
	}
	return nil
}

// applyRef writes, removes, or leaves a reference key per the change state.
func applyRef(block *frontmatter.Block, key string, c entity.Change[ref.Ref]) error {
	switch {
	case c.IsSet():
		return block.SetString(key, c.Value().String())
	case c.IsCleared():
		block.Remove(key)
	}
	return nil
}

// applyDate writes, removes, or leaves a date key per the change state.
func applyDate(block *frontmatter.Block, key string, c entity.Change[dateval.Value]) error {
	switch {
	case c.IsSet():
		return block.SetString(key, c.Value().String())
	case c.IsCleared():
		block.Remove(key)
	}
	return nil
}

// applyTags writes, removes, or leaves the tag list per the change state.
func applyTags(block *frontmatter.Block, c entity.Change[[]string]) error {
	switch {
	case c.IsSet():
		return block.SetStringList("tags", c.Value())
	case c.IsCleared():
		block.Remove("tags")
	}
	return nil
}

// Lifecycle transitions. Each is a one-field status patch through the same
// merge path as any other update.

// StartTask moves a task to in-progress.
func (v *Vault) StartTask(location string) (*entity.Task, error) {
	return v.UpdateTask(location, entity.NewTaskPatch().SetStatus(entity.TaskInProgress))
}

// BlockTask moves a task to blocked.
func (v *Vault) BlockTask(location string) (*entity.Task, error) {
	return v.UpdateTask(location, entity.NewTaskPatch().SetStatus(entity.TaskBlocked))
}

// CompleteTask moves a task to done, stamping the completion timestamp.
func (v *Vault) CompleteTask(location string) (*entity.Task, error) {
	return v.UpdateTask(location, entity.NewTaskPatch().SetStatus(entity.TaskDone))
}

// DropTask moves a task to dropped.
func (v *Vault) DropTask(location string) (*entity.Task, error) {
	return v.UpdateTask(location, entity.NewTaskPatch().SetStatus(entity.TaskDropped))
}

// ReopenTask moves a terminal task back to ready.
func (v *Vault) ReopenTask(location string) (*entity.Task, error) {
	return v.UpdateTask(location, entity.NewTaskPatch().SetStatus(entity.TaskReady))
}

// ActivateProject moves a project to active.
func (v *Vault) ActivateProject(location string) (*entity.Project, error) {
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectActive))
}

// HoldProject moves a project to on-hold.
func (v *Vault) HoldProject(location string) (*entity.Project, error) {
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectOnHold))
}

// CompleteProject moves a project to done, stamping the completion timestamp.
func (v *Vault) CompleteProject(location string) (*entity.Project, error) {
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectDone))
}

// DropProject moves a project to dropped.
func (v *Vault) DropProject(location string) (*entity.Project, error) {
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectDropped))
}

// ReopenProject moves a terminal project back to planned.
func (v *Vault) ReopenProject(location string) (*entity.Project, error) {
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectPlanned))
}

// BatchOutcome is one file's result from a batch mutation.
type BatchOutcome struct {
	Location string
	Err      error
}

// UpdateTasksWhere applies the same patch to every task matching the filter.
// Failures on individual files never abort the batch; each outcome reports
// its own error.
func (v *Vault) UpdateTasksWhere(f query.TaskFilter, patch *entity.TaskPatch) ([]BatchOutcome, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	tasks, err := v.ListTasks(f)
	if err != nil {
		return nil, err
	}
	outcomes := make([]BatchOutcome, 0, len(tasks))
	for _, t := range tasks {
		_, err := v.UpdateTask(t.Location, patch)
		outcomes = append(outcomes, BatchOutcome{Location: t.Location, Err: err})
	}
	return outcomes, nil
}

package vault

import (
	"os"
	"path/filepath"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/entity"
)

// ArchiveTask moves a task file into the archive sub-path and returns the
// archived copy. The file content is untouched; archival for tasks is purely
// a location change.
func (v *Vault) ArchiveTask(location string) (*entity.Task, error) {
	loc := v.abs(location)
	if v.IsArchivedLocation(loc) {
		return nil, clierr.Newf(clierr.AlreadyArchived, "task is already archived: %s", v.rel(loc))
	}
	dest := filepath.Join(v.paths.TasksArchive, filepath.Base(loc))
	if err := v.moveFile(loc, dest); err != nil {
		return nil, err
	}
	return v.GetTask(dest)
}

// UnarchiveTask moves a task file out of the archive sub-path back into the
// active tasks directory.
func (v *Vault) UnarchiveTask(location string) (*entity.Task, error) {
	loc := v.abs(location)
	if !v.IsArchivedLocation(loc) {
		return nil, clierr.Newf(clierr.NotArchived, "task is not archived: %s", v.rel(loc))
	}
	dest := filepath.Join(v.paths.Tasks, filepath.Base(loc))
	if err := v.moveFile(loc, dest); err != nil {
		return nil, err
	}
	return v.GetTask(dest)
}

// moveFile renames src to dest, refusing to overwrite an existing file.
func (v *Vault) moveFile(src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return v.fsError(src, err)
	}
	if _, err := os.Stat(dest); err == nil {
		return clierr.Newf(clierr.LocationCollision, "entity already exists: %s", v.rel(dest)).
			WithDetails(map[string]any{"location": v.rel(dest)})
	} else if !os.IsNotExist(err) {
		return v.fsError(dest, err)
	}
	if err := ensureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	if err := os.Rename(src, dest); err != nil {
		return v.fsError(src, err)
	}
	return nil
}

// ArchiveProject flips a project's status to archived. The file stays where
// it is; project archival is a status value, not a location.
func (v *Vault) ArchiveProject(location string) (*entity.Project, error) {
	p, err := v.GetProject(location)
	if err != nil {
		return nil, err
	}
	if p.Archived() {
		return nil, clierr.Newf(clierr.AlreadyArchived, "project is already archived: %s", v.rel(p.Location))
	}
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectArchived))
}

// UnarchiveProject returns an archived project to planned.
func (v *Vault) UnarchiveProject(location string) (*entity.Project, error) {
	p, err := v.GetProject(location)
	if err != nil {
		return nil, err
	}
	if !p.Archived() {
		return nil, clierr.Newf(clierr.NotArchived, "project is not archived: %s", v.rel(p.Location))
	}
	return v.UpdateProject(location, entity.NewProjectPatch().SetStatus(entity.ProjectPlanned))
}

// ArchiveArea flips an area's status to archived.
func (v *Vault) ArchiveArea(location string) (*entity.Area, error) {
	a, err := v.GetArea(location)
	if err != nil {
		return nil, err
	}
	if a.Archived() {
		return nil, clierr.Newf(clierr.AlreadyArchived, "area is already archived: %s", v.rel(a.Location))
	}
	return v.UpdateArea(location, entity.NewAreaPatch().SetStatus(entity.AreaArchived))
}

// UnarchiveArea returns an archived area to active.
func (v *Vault) UnarchiveArea(location string) (*entity.Area, error) {
	a, err := v.GetArea(location)
	if err != nil {
		return nil, err
	}
	if !a.Archived() {
		return nil, clierr.Newf(clierr.NotArchived, "area is not archived: %s", v.rel(a.Location))
	}
	return v.UpdateArea(location, entity.NewAreaPatch().SetStatus(entity.AreaActive))
}

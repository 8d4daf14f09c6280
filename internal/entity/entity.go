// Package entity defines the three record kinds — Task, Project, Area —
// their status enums, and the tri-state update patches applied to them.
package entity

import (
	"github.com/fernwood-software/tend/internal/clierr"
)

// Kind identifies an entity kind.
type Kind string

// Entity kinds.
const (
	KindTask    Kind = "task"
	KindProject Kind = "project"
	KindArea    Kind = "area"
)

// DiscriminatorKey is the optional frontmatter key marking a file as a
// managed entity. If any file in a directory carries it, only files carrying
// it for the relevant kind are included in that kind's listing.
const DiscriminatorKey = "kind"

// TaskStatus is the closed status enum for tasks.
type TaskStatus string

// Task statuses. Archival is deliberately not a status: an archived task is
// one whose file lives under the archive sub-path.
const (
	TaskReady      TaskStatus = "ready"
	TaskInProgress TaskStatus = "in-progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskDone       TaskStatus = "done"
	TaskDropped    TaskStatus = "dropped"
)

// TaskStatuses returns the ordered list of valid task statuses.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskReady, TaskInProgress, TaskBlocked, TaskDone, TaskDropped}
}

// Terminal reports whether the status ends a task's lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskDropped
}

// ParseTaskStatus validates a status string against the task enum.
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, valid := range TaskStatuses() {
		if TaskStatus(s) == valid {
			return valid, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidStatus, "invalid task status %q", s).
		WithDetails(map[string]any{"status": s, "allowed": TaskStatuses()})
}

// ProjectStatus is the closed status enum for projects.
type ProjectStatus string

// Project statuses. The enum carries an explicit archived value, so project
// archival is a status flip rather than a file move.
const (
	ProjectPlanned  ProjectStatus = "planned"
	ProjectActive   ProjectStatus = "active"
	ProjectOnHold   ProjectStatus = "on-hold"
	ProjectDone     ProjectStatus = "done"
	ProjectDropped  ProjectStatus = "dropped"
	ProjectArchived ProjectStatus = "archived"
)

// ProjectStatuses returns the ordered list of valid project statuses.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectPlanned, ProjectActive, ProjectOnHold,
		ProjectDone, ProjectDropped, ProjectArchived,
	}
}

// Terminal reports whether the status ends a project's lifecycle.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectDone || s == ProjectDropped
}

// ParseProjectStatus validates a status string against the project enum.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	for _, valid := range ProjectStatuses() {
		if ProjectStatus(s) == valid {
			return valid, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidStatus, "invalid project status %q", s).
		WithDetails(map[string]any{"status": s, "allowed": ProjectStatuses()})
}

// AreaStatus is the closed status enum for areas.
type AreaStatus string

// Area statuses. Area archival is purely a status value; the file never moves.
const (
	AreaActive   AreaStatus = "active"
	AreaArchived AreaStatus = "archived"
)

// AreaStatuses returns the ordered list of valid area statuses.
func AreaStatuses() []AreaStatus {
	return []AreaStatus{AreaActive, AreaArchived}
}

// ParseAreaStatus validates a status string against the area enum.
func ParseAreaStatus(s string) (AreaStatus, error) {
	for _, valid := range AreaStatuses() {
		if AreaStatus(s) == valid {
			return valid, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidStatus, "invalid area status %q", s).
		WithDetails(map[string]any{"status": s, "allowed": AreaStatuses()})
}

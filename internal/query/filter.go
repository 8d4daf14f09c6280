// Package query evaluates typed predicates against in-memory entities.
//
// Semantics: constraints on different fields combine with AND; a set of
// acceptable values for one field combines with OR across the set. An unset
// constraint never excludes a record. Date constraints compare the date
// component only, even when the stored value carries a time.
package query

import (
	"strings"

	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
)

// TaskFilter defines which tasks to include.
type TaskFilter struct {
	Statuses   []entity.TaskStatus
	Tags       []string // OR across the set; matched against the task's tags
	Project    string   // matches the project reference target (title, path, or filename)
	Area       string   // matches the area reference target
	HasProject *bool    // nil=no filter, true=only with project, false=only without
	HasDue     *bool
	DueBefore  *dateval.Value // strictly before, date component only
	DueAfter   *dateval.Value // strictly after, date component only
	Search     string         // case-insensitive substring match across title, body, and tags

	// IncludeArchived widens the scan to the task archive sub-path. Archival
	// is a location fact for tasks, so this is a scan switch rather than a
	// field constraint; the scan layer consults it.
	IncludeArchived bool
}

// Match reports whether a task satisfies every set constraint.
func (f TaskFilter) Match(t *entity.Task) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatches(t.Tags, f.Tags) {
		return false
	}
	if f.Project != "" && !strings.EqualFold(t.Project.Target(), f.Project) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(t.Area.Target(), f.Area) {
		return false
	}
	if f.HasProject != nil && t.Project.IsZero() == *f.HasProject {
		return false
	}
	if f.HasDue != nil && t.Due.IsZero() == *f.HasDue {
		return false
	}
	if !matchesDateRange(t.Due, f.DueBefore, f.DueAfter) {
		return false
	}
	if f.Search != "" && !matchesSearch(t.Title, t.Body, t.Tags, f.Search) {
		return false
	}
	return true
}

// ProjectFilter defines which projects to include.
type ProjectFilter struct {
	Statuses  []entity.ProjectStatus
	Tags      []string
	Area      string
	HasDue    *bool
	DueBefore *dateval.Value
	DueAfter  *dateval.Value
	Search    string
}

// Match reports whether a project satisfies every set constraint.
func (f ProjectFilter) Match(p *entity.Project) bool {
	if len(f.Statuses) > 0 && !containsProjectStatus(f.Statuses, p.Status) {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatches(p.Tags, f.Tags) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(p.Area.Target(), f.Area) {
		return false
	}
	if f.HasDue != nil && p.Due.IsZero() == *f.HasDue {
		return false
	}
	if !matchesDateRange(p.Due, f.DueBefore, f.DueAfter) {
		return false
	}
	if f.Search != "" && !matchesSearch(p.Title, p.Body, p.Tags, f.Search) {
		return false
	}
	return true
}

// AreaFilter defines which areas to include. Area archival is a status
// value, so there is no archive switch; constrain Statuses instead.
type AreaFilter struct {
	Statuses []entity.AreaStatus
	Tags     []string
	Search   string
}

// Match reports whether an area satisfies every set constraint.
func (f AreaFilter) Match(a *entity.Area) bool {
	if len(f.Statuses) > 0 && !containsAreaStatus(f.Statuses, a.Status) {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatches(a.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !matchesSearch(a.Title, a.Body, a.Tags, f.Search) {
		return false
	}
	return true
}

// matchesDateRange applies before/after bounds on the date component only.
// An absent value fails any set bound.
func matchesDateRange(v dateval.Value, before, after *dateval.Value) bool {
	if before == nil && after == nil {
		return true
	}
	if v.IsZero() {
		return false
	}
	if before != nil && v.CompareDate(*before) >= 0 {
		return false
	}
	if after != nil && v.CompareDate(*after) <= 0 {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title,
// body, and tags.
func matchesSearch(title, body string, tags []string, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(body), q) {
		return true
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func anyTagMatches(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func containsStatus(set []entity.TaskStatus, s entity.TaskStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsProjectStatus(set []entity.ProjectStatus, s entity.ProjectStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsAreaStatus(set []entity.AreaStatus, s entity.AreaStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

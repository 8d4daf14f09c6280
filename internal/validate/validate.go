// Package validate checks vault files for structural and semantic problems
// without mutating anything. It reports per-field issues where the entity
// parser would only return its first error.
package validate

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/frontmatter"
	"github.com/fernwood-software/tend/internal/ref"
	"github.com/fernwood-software/tend/internal/vault"
)

// Severity classifies an issue. Errors make a file unusable as an entity;
// warnings flag suspicious but parseable content.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes beyond the shared clierr codes.
const (
	CodePastDue      = "PAST_DUE"
	CodeKindMismatch = "KIND_MISMATCH"
)

// Issue is one problem found in one file.
type Issue struct {
	Location string   `json:"location"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Validator runs checks against a vault.
type Validator struct {
	vault *vault.Vault
}

// New creates a Validator over the given vault.
func New(v *vault.Vault) *Validator {
	return &Validator{vault: v}
}

// All validates every managed file in the vault, archived tasks included.
func (val *Validator) All() ([]Issue, error) {
	paths := val.vault.Paths()
	dirs := []struct {
		kind entity.Kind
		dir  string
	}{
		{entity.KindTask, paths.Tasks},
		{entity.KindTask, paths.TasksArchive},
		{entity.KindProject, paths.Projects},
		{entity.KindArea, paths.Areas},
	}

	var issues []Issue
	for _, d := range dirs {
		entries, err := os.ReadDir(d.dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, clierr.Newf(clierr.InternalError, "%v", err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			fileIssues, err := val.check(d.kind, filepath.Join(d.dir, name))
			if err != nil {
				return nil, err
			}
			issues = append(issues, fileIssues...)
		}
	}
	return issues, nil
}

// File validates a single managed file.
func (val *Validator) File(location string) ([]Issue, error) {
	kind, ok := val.vault.KindOf(location)
	if !ok {
		return nil, clierr.Newf(clierr.InvalidInput, "not a managed entity file: %s", location)
	}
	return val.check(kind, location)
}

func (val *Validator) check(kind entity.Kind, location string) ([]Issue, error) {
	data, err := os.ReadFile(location) //nolint:gosec // entity path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierr.Newf(clierr.NotFound, "no such entity: %s", location)
		}
		return nil, clierr.Newf(clierr.InternalError, "%v", err)
	}

	block, err := frontmatter.Parse(data)
	if err != nil {
		return []Issue{val.issue(location, SeverityError, clierr.ParseError, err.Error())}, nil
	}

	var issues []Issue
	add := func(sev Severity, code, msg string) {
		issues = append(issues, val.issue(location, sev, code, msg))
	}

	if s, ok := scalar(block.Get("title")); !ok || s == "" {
		add(SeverityError, clierr.MissingField, "missing required field: title")
	}

	status, statusOK := scalar(block.Get("status"))
	terminal := false
	switch {
	case !statusOK || status == "":
		add(SeverityError, clierr.MissingField, "missing required field: status")
	default:
		switch kind {
		case entity.KindTask:
			s, err := entity.ParseTaskStatus(status)
			if err != nil {
				add(SeverityError, clierr.InvalidStatus, err.Error())
			} else {
				terminal = s.Terminal()
			}
		case entity.KindProject:
			s, err := entity.ParseProjectStatus(status)
			if err != nil {
				add(SeverityError, clierr.InvalidStatus, err.Error())
			} else {
				terminal = s.Terminal()
			}
		case entity.KindArea:
			if _, err := entity.ParseAreaStatus(status); err != nil {
				add(SeverityError, clierr.InvalidStatus, err.Error())
			}
		}
	}

	dateKeys := []string{"created", "updated"}
	if kind != entity.KindArea {
		dateKeys = append(dateKeys, "due", "completed")
	}
	var due dateval.Value
	for _, key := range dateKeys {
		s, ok := scalar(block.Get(key))
		if !ok || s == "" {
			continue
		}
		v, err := dateval.Parse(s)
		if err != nil {
			add(SeverityError, clierr.InvalidDate, "invalid "+key+" date: "+err.Error())
			continue
		}
		if key == "due" {
			due = v
		}
	}

	switch kind {
	case entity.KindTask:
		issues = append(issues, val.checkRef(location, block, "project", entity.KindProject)...)
		issues = append(issues, val.checkRef(location, block, "area", entity.KindArea)...)
	case entity.KindProject:
		issues = append(issues, val.checkRef(location, block, "area", entity.KindArea)...)
	}

	if !due.IsZero() && !terminal && due.CompareDate(dateval.Today()) < 0 {
		add(SeverityWarning, CodePastDue, "due date "+due.String()+" is in the past")
	}

	if disc, ok := scalar(block.Get(entity.DiscriminatorKey)); ok && disc != "" && disc != string(kind) {
		add(SeverityWarning, CodeKindMismatch,
			"file declares kind "+disc+" but lives in the "+string(kind)+" directory")
	}

	return issues, nil
}

// checkRef validates a reference field: it must parse and, when present,
// resolve to exactly one existing entity.
func (val *Validator) checkRef(location string, block *frontmatter.Block, key string, kind entity.Kind) []Issue {
	s, ok := scalar(block.Get(key))
	if !ok || s == "" {
		return nil
	}
	r, err := ref.Parse(s)
	if err != nil {
		return []Issue{val.issue(location, SeverityError, clierr.InvalidReference,
			"invalid "+key+" reference: "+err.Error())}
	}
	if _, err := val.vault.Resolve(kind, r); err != nil {
		code := clierr.BrokenReference
		var ce *clierr.Error
		if errors.As(err, &ce) {
			code = ce.Code
		}
		return []Issue{val.issue(location, SeverityError, code, err.Error())}
	}
	return nil
}

func (val *Validator) issue(location string, sev Severity, code, msg string) Issue {
	loc := location
	if r, err := filepath.Rel(val.vault.Paths().Root, location); err == nil {
		loc = r
	}
	return Issue{Location: loc, Severity: sev, Code: code, Message: msg}
}

// scalar extracts a scalar node's string value. Null nodes and non-scalars
// report not-ok.
func scalar(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", false
	}
	return node.Value, true
}

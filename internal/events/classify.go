// Package events turns raw file system changes under the vault into typed
// entity events.
package events

import (
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/vault"
)

// ChangeKind is the file-level change category.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// Event is one classified change to a managed entity file. For deletions
// only the location and kind are known; for the others the entity is the
// freshly re-parsed file content.
type Event struct {
	Change   ChangeKind      `json:"change"`
	Kind     entity.Kind     `json:"kind"`
	Location string          `json:"location"`
	Task     *entity.Task    `json:"task,omitempty"`
	Project  *entity.Project `json:"project,omitempty"`
	Area     *entity.Area    `json:"area,omitempty"`
}

// Classifier maps file paths to entity events using the vault's directory
// layout.
type Classifier struct {
	vault *vault.Vault
}

// NewClassifier creates a Classifier over the given vault.
func NewClassifier(v *vault.Vault) *Classifier {
	return &Classifier{vault: v}
}

// WatchedPaths returns the directories a watcher should observe.
func (c *Classifier) WatchedPaths() []string {
	return c.vault.WatchedPaths()
}

// Classify turns a path-level change into an entity event. Paths outside the
// managed directories and non-markdown files yield a nil event. Created and
// modified files are re-read; a file that no longer parses surfaces its
// parse error.
func (c *Classifier) Classify(path string, change ChangeKind) (*Event, error) {
	kind, ok := c.vault.KindOf(path)
	if !ok {
		return nil, nil
	}

	ev := &Event{Change: change, Kind: kind, Location: path}
	if change == ChangeDeleted {
		return ev, nil
	}

	switch kind {
	case entity.KindTask:
		t, err := c.vault.GetTask(path)
		if err != nil {
			return nil, err
		}
		ev.Task = t
	case entity.KindProject:
		p, err := c.vault.GetProject(path)
		if err != nil {
			return nil, err
		}
		ev.Project = p
	case entity.KindArea:
		a, err := c.vault.GetArea(path)
		if err != nil {
			return nil, err
		}
		ev.Area = a
	}
	return ev, nil
}

package entity

import (
	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/frontmatter"
	"github.com/fernwood-software/tend/internal/ref"
)

// Task represents a task parsed from a markdown file. A Task with an empty
// Location is a parsed-without-location result; binding it to a file path
// makes it a full entity.
type Task struct {
	Title     string        `json:"title"`
	Status    TaskStatus    `json:"status"`
	Project   ref.Ref       `json:"project,omitzero"`
	Area      ref.Ref       `json:"area,omitzero"`
	Due       dateval.Value `json:"due,omitzero"`
	Tags      []string      `json:"tags,omitempty"`
	Created   dateval.Value `json:"created,omitzero"`
	Updated   dateval.Value `json:"updated,omitzero"`
	Completed dateval.Value `json:"completed,omitzero"`

	// Discriminator is the raw value of the "kind" key, or "" when absent.
	Discriminator string `json:"-"`

	// Extras holds unrecognized frontmatter keys in source order. Their
	// content is preserved verbatim on write.
	Extras []frontmatter.Extra `json:"-"`

	// Body is the markdown content below the frontmatter.
	Body string `json:"body,omitempty"`

	// Location is the file path identifying the task; the sole identifier.
	Location string `json:"location,omitempty"`
}

// taskKnownKeys is the frontmatter schema for tasks; everything else is an
// extra field.
var taskKnownKeys = map[string]bool{
	DiscriminatorKey: true,
	"title":          true,
	"status":         true,
	"project":        true,
	"area":           true,
	"due":            true,
	"tags":           true,
	"created":        true,
	"updated":        true,
	"completed":      true,
}

// TaskKnownKeys returns the task frontmatter schema keys.
func TaskKnownKeys() map[string]bool { return taskKnownKeys }

type taskDoc struct {
	Kind      string        `yaml:"kind"`
	Title     string        `yaml:"title"`
	Status    string        `yaml:"status"`
	Project   ref.Ref       `yaml:"project"`
	Area      ref.Ref       `yaml:"area"`
	Due       dateval.Value `yaml:"due"`
	Tags      []string      `yaml:"tags"`
	Created   dateval.Value `yaml:"created"`
	Updated   dateval.Value `yaml:"updated"`
	Completed dateval.Value `yaml:"completed"`
}

// ParseTask parses file content into a Task without a location.
func ParseTask(data []byte) (*Task, error) {
	block, err := frontmatter.Parse(data)
	if err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}
	return TaskFromBlock(block)
}

// TaskFromBlock maps an already-parsed block into a typed Task.
func TaskFromBlock(block *frontmatter.Block) (*Task, error) {
	var doc taskDoc
	if err := block.Decode(&doc); err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}

	if doc.Title == "" {
		return nil, clierr.New(clierr.MissingField, "task is missing required field: title")
	}
	if doc.Status == "" {
		return nil, clierr.New(clierr.MissingField, "task is missing required field: status")
	}
	status, err := ParseTaskStatus(doc.Status)
	if err != nil {
		return nil, err
	}

	return &Task{
		Title:         doc.Title,
		Status:        status,
		Project:       doc.Project,
		Area:          doc.Area,
		Due:           doc.Due,
		Tags:          doc.Tags,
		Created:       doc.Created,
		Updated:       doc.Updated,
		Completed:     doc.Completed,
		Discriminator: doc.Kind,
		Extras:        block.Extras(taskKnownKeys),
		Body:          string(block.Body()),
	}, nil
}

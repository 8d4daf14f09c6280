package entity

import (
	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/frontmatter"
	"github.com/fernwood-software/tend/internal/ref"
)

// Project represents a project parsed from a markdown file.
type Project struct {
	Title     string        `json:"title"`
	Status    ProjectStatus `json:"status"`
	Area      ref.Ref       `json:"area,omitzero"`
	Due       dateval.Value `json:"due,omitzero"`
	Tags      []string      `json:"tags,omitempty"`
	Created   dateval.Value `json:"created,omitzero"`
	Updated   dateval.Value `json:"updated,omitzero"`
	Completed dateval.Value `json:"completed,omitzero"`

	Discriminator string              `json:"-"`
	Extras        []frontmatter.Extra `json:"-"`
	Body          string              `json:"body,omitempty"`
	Location      string              `json:"location,omitempty"`
}

// Archived reports whether the project is archived (a status-value fact).
func (p *Project) Archived() bool {
	return p.Status == ProjectArchived
}

var projectKnownKeys = map[string]bool{
	DiscriminatorKey: true,
	"title":          true,
	"status":         true,
	"area":           true,
	"due":            true,
	"tags":           true,
	"created":        true,
	"updated":        true,
	"completed":      true,
}

// ProjectKnownKeys returns the project frontmatter schema keys.
func ProjectKnownKeys() map[string]bool { return projectKnownKeys }

type projectDoc struct {
	Kind      string        `yaml:"kind"`
	Title     string        `yaml:"title"`
	Status    string        `yaml:"status"`
	Area      ref.Ref       `yaml:"area"`
	Due       dateval.Value `yaml:"due"`
	Tags      []string      `yaml:"tags"`
	Created   dateval.Value `yaml:"created"`
	Updated   dateval.Value `yaml:"updated"`
	Completed dateval.Value `yaml:"completed"`
}

// ParseProject parses file content into a Project without a location.
func ParseProject(data []byte) (*Project, error) {
	block, err := frontmatter.Parse(data)
	if err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}
	return ProjectFromBlock(block)
}

// ProjectFromBlock maps an already-parsed block into a typed Project.
func ProjectFromBlock(block *frontmatter.Block) (*Project, error) {
	var doc projectDoc
	if err := block.Decode(&doc); err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}

	if doc.Title == "" {
		return nil, clierr.New(clierr.MissingField, "project is missing required field: title")
	}
	if doc.Status == "" {
		return nil, clierr.New(clierr.MissingField, "project is missing required field: status")
	}
	status, err := ParseProjectStatus(doc.Status)
	if err != nil {
		return nil, err
	}

	return &Project{
		Title:         doc.Title,
		Status:        status,
		Area:          doc.Area,
		Due:           doc.Due,
		Tags:          doc.Tags,
		Created:       doc.Created,
		Updated:       doc.Updated,
		Completed:     doc.Completed,
		Discriminator: doc.Kind,
		Extras:        block.Extras(projectKnownKeys),
		Body:          string(block.Body()),
	}, nil
}

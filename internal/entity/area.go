package entity

import (
	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/dateval"
	"github.com/fernwood-software/tend/internal/frontmatter"
)

// Area represents an area of responsibility parsed from a markdown file.
type Area struct {
	Title   string        `json:"title"`
	Status  AreaStatus    `json:"status"`
	Tags    []string      `json:"tags,omitempty"`
	Created dateval.Value `json:"created,omitzero"`
	Updated dateval.Value `json:"updated,omitzero"`

	Discriminator string              `json:"-"`
	Extras        []frontmatter.Extra `json:"-"`
	Body          string              `json:"body,omitempty"`
	Location      string              `json:"location,omitempty"`
}

// Archived reports whether the area is archived (a status-value fact; area
// files never move).
func (a *Area) Archived() bool {
	return a.Status == AreaArchived
}

var areaKnownKeys = map[string]bool{
	DiscriminatorKey: true,
	"title":          true,
	"status":         true,
	"tags":           true,
	"created":        true,
	"updated":        true,
}

// AreaKnownKeys returns the area frontmatter schema keys.
func AreaKnownKeys() map[string]bool { return areaKnownKeys }

type areaDoc struct {
	Kind    string        `yaml:"kind"`
	Title   string        `yaml:"title"`
	Status  string        `yaml:"status"`
	Tags    []string      `yaml:"tags"`
	Created dateval.Value `yaml:"created"`
	Updated dateval.Value `yaml:"updated"`
}

// ParseArea parses file content into an Area without a location.
func ParseArea(data []byte) (*Area, error) {
	block, err := frontmatter.Parse(data)
	if err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}
	return AreaFromBlock(block)
}

// AreaFromBlock maps an already-parsed block into a typed Area.
func AreaFromBlock(block *frontmatter.Block) (*Area, error) {
	var doc areaDoc
	if err := block.Decode(&doc); err != nil {
		return nil, clierr.Newf(clierr.ParseError, "%v", err)
	}

	if doc.Title == "" {
		return nil, clierr.New(clierr.MissingField, "area is missing required field: title")
	}
	if doc.Status == "" {
		return nil, clierr.New(clierr.MissingField, "area is missing required field: status")
	}
	status, err := ParseAreaStatus(doc.Status)
	if err != nil {
		return nil, err
	}

	return &Area{
		Title:         doc.Title,
		Status:        status,
		Tags:          doc.Tags,
		Created:       doc.Created,
		Updated:       doc.Updated,
		Discriminator: doc.Kind,
		Extras:        block.Extras(areaKnownKeys),
		Body:          string(block.Body()),
	}, nil
}

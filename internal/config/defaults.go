// Package config handles vault configuration.
package config

const (
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultArchiveDir is the default archive subdirectory name, nested
	// under the tasks directory.
	DefaultArchiveDir = "archive"
	// DefaultProjectsDir is the default projects subdirectory name.
	DefaultProjectsDir = "projects"
	// DefaultAreasDir is the default areas subdirectory name.
	DefaultAreasDir = "areas"

	// ConfigFileName is the name of the config file at the vault root.
	ConfigFileName = "tend.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1
)

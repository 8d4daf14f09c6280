package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/fernwood-software/tend/internal/clierr"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no vault found (run 'tend init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the vault configuration stored in tend.yml at the vault
// root. Directory names are relative: tasks, projects, and areas hang off
// the root, the archive hangs off the tasks directory.
type Config struct {
	Version     int    `yaml:"version"`
	TasksDir    string `yaml:"tasks_dir"`
	ArchiveDir  string `yaml:"archive_dir"`
	ProjectsDir string `yaml:"projects_dir"`
	AreasDir    string `yaml:"areas_dir"`

	// ClearCompletedOnReopen controls whether the completion timestamp is
	// cleared when a terminal task or project is reopened. Defaults to true.
	ClearCompletedOnReopen *bool `yaml:"clear_completed_on_reopen,omitempty"`

	// dir is the absolute path to the vault root (not serialized).
	dir string `yaml:"-"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:     CurrentVersion,
		TasksDir:    DefaultTasksDir,
		ArchiveDir:  DefaultArchiveDir,
		ProjectsDir: DefaultProjectsDir,
		AreasDir:    DefaultAreasDir,
	}
}

// Dir returns the absolute path to the vault root.
func (c *Config) Dir() string { return c.dir }

// SetDir sets the vault root path on the config.
func (c *Config) SetDir(dir string) { c.dir = dir }

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ArchivePath returns the absolute path to the task archive directory.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.dir, c.TasksDir, c.ArchiveDir)
}

// ProjectsPath returns the absolute path to the projects directory.
func (c *Config) ProjectsPath() string {
	return filepath.Join(c.dir, c.ProjectsDir)
}

// AreasPath returns the absolute path to the areas directory.
func (c *Config) AreasPath() string {
	return filepath.Join(c.dir, c.AreasDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// ClearCompleted returns whether reopening a terminal entity clears its
// completion timestamp. Unset means true.
func (c *Config) ClearCompleted() bool {
	if c.ClearCompletedOnReopen == nil {
		return true
	}
	return *c.ClearCompletedOnReopen
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	for name, dir := range map[string]string{
		"tasks_dir":    c.TasksDir,
		"archive_dir":  c.ArchiveDir,
		"projects_dir": c.ProjectsDir,
		"areas_dir":    c.AreasDir,
	} {
		if dir == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, name)
		}
		if filepath.IsAbs(dir) || strings.Contains(dir, "..") {
			return fmt.Errorf("%w: %s must be a plain relative directory name", ErrInvalid, name)
		}
	}
	if c.TasksDir == c.ProjectsDir || c.TasksDir == c.AreasDir || c.ProjectsDir == c.AreasDir {
		return fmt.Errorf("%w: directory names must be distinct", ErrInvalid)
	}
	return nil
}

// Init creates a new vault in the given directory with default settings:
// the config file plus the tasks, archive, projects, and areas directories.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	for _, p := range []string{cfg.ArchivePath(), cfg.ProjectsPath(), cfg.AreasPath()} {
		if err := os.MkdirAll(p, dirMode); err != nil {
			return nil, fmt.Errorf("creating vault directory: %w", err)
		}
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given vault root.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a directory containing
// tend.yml. Returns the absolute path to the vault root.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.VaultNotFound,
				"no vault found (run 'tend init' to create one)")
		}
		dir = parent
	}
}

// Package cmd implements the tend CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/config"
	"github.com/fernwood-software/tend/internal/output"
	"github.com/fernwood-software/tend/internal/ref"
	"github.com/fernwood-software/tend/internal/vault"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tend",
	Short: "Plain-file manager for tasks, projects, and areas",
	Long: `tend manages tasks, projects, and areas stored as markdown files with
YAML frontmatter. The files are the database: every command reads and writes
them directly, preserving unknown fields, comments, and formatting.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to vault directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TEND_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the vault root.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	return config.FindDir(cwd)
}

// loadConfig finds and loads the vault config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, clierr.New(clierr.VaultNotFound,
				"no vault found (run 'tend init' to create one)")
		}
		return nil, err
	}
	return cfg, nil
}

// loadVault builds a Vault from the loaded config.
func loadVault() (*vault.Vault, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	paths := vault.Paths{
		Root:         cfg.Dir(),
		Tasks:        cfg.TasksPath(),
		TasksArchive: cfg.ArchivePath(),
		Projects:     cfg.ProjectsPath(),
		Areas:        cfg.AreasPath(),
	}
	opts := vault.Options{
		ClearCompletedOnReopen: cfg.ClearCompleted(),
		ReferentialChecks:      true,
	}
	return vault.New(paths, opts), nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// parseArgRef interprets a command argument as an entity reference. Bracketed
// and path-like arguments parse as written; anything else without a markdown
// extension is treated as a title.
func parseArgRef(arg string) (ref.Ref, error) {
	if strings.HasPrefix(arg, "[[") || strings.Contains(arg, "/") || strings.HasSuffix(arg, ".md") {
		r, err := ref.Parse(arg)
		if err != nil {
			return ref.Ref{}, clierr.Newf(clierr.InvalidReference, "%v", err)
		}
		return r, nil
	}
	return ref.ByTitle(arg), nil
}

// reportBatch renders batch outcomes. Returns a SilentError with exit code 1
// if any operation failed (after outputting results).
func reportBatch(v *vault.Vault, outcomes []vault.BatchOutcome) error {
	results := make([]output.BatchResult, 0, len(outcomes))
	anyFailed := false

	for _, o := range outcomes {
		loc := o.Location
		if r, err := relToRoot(v, loc); err == nil {
			loc = r
		}
		if o.Err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(o.Err, &cliErr) {
				results = append(results, output.BatchResult{Location: loc, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{Location: loc, OK: false, Error: o.Err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{Location: loc, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: %s: %s\n", r.Location, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(results))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func relToRoot(v *vault.Vault, loc string) (string, error) {
	root := v.Paths().Root
	if root == "" {
		return loc, nil
	}
	if rel, ok := strings.CutPrefix(loc, root+string(os.PathSeparator)); ok {
		return rel, nil
	}
	return loc, nil
}

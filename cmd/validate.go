package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/output"
	"github.com/fernwood-software/tend/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check vault files for problems",
	Long: `Checks every managed file (or a single file) for structural and
semantic problems: unparseable frontmatter, missing required fields, invalid
statuses and dates, and references that do not resolve. Exits non-zero when
any error-severity issue is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	val := validate.New(v)
	var issues []validate.Issue
	if len(args) == 1 {
		issues, err = val.File(args[0])
	} else {
		issues, err = val.All()
	}
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if issues == nil {
			issues = []validate.Issue{}
		}
		if err := output.JSON(os.Stdout, issues); err != nil {
			return err
		}
	case output.FormatCompact:
		output.IssueCompact(os.Stdout, issues)
	default:
		output.IssueTable(os.Stdout, issues)
	}

	for _, i := range issues {
		if i.Severity == validate.SeverityError {
			return &clierr.SilentError{Code: 1}
		}
	}
	return nil
}

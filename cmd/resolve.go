package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/clierr"
	"github.com/fernwood-software/tend/internal/entity"
	"github.com/fernwood-software/tend/internal/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <kind> <reference>",
	Short: "Resolve a reference to a file path",
	Long: `Resolves a reference ([[Title]], relative path, or filename) against
the vault and prints the file it points at. Kind is task, project, or area.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // kind and reference
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, args []string) error {
	var kind entity.Kind
	switch args[0] {
	case "task":
		kind = entity.KindTask
	case "project":
		kind = entity.KindProject
	case "area":
		kind = entity.KindArea
	default:
		return clierr.Newf(clierr.InvalidInput, "unknown kind %q (expected task, project, or area)", args[0])
	}

	v, err := loadVault()
	if err != nil {
		return err
	}
	r, err := parseArgRef(args[1])
	if err != nil {
		return err
	}
	loc, err := v.Resolve(kind, r)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"location": loc})
	}
	output.Messagef(os.Stdout, "%s", loc)
	return nil
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/config"
	"github.com/fernwood-software/tend/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new vault",
	Long: `Creates a vault in the given directory (default: current directory):
the tend.yml config file plus the tasks, tasks/archive, projects, and areas
directories.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := config.Init(dir)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"dir": cfg.Dir()})
	}
	output.Messagef(os.Stdout, "Initialized vault in %s", cfg.Dir())
	return nil
}

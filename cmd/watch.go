package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fernwood-software/tend/internal/events"
	"github.com/fernwood-software/tend/internal/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream entity changes as they happen",
	Long: `Watches the vault directories and prints one event per changed entity
file until interrupted. Use --json for machine-readable event records.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	v, err := loadVault()
	if err != nil {
		return err
	}

	jsonMode := outputFormat() == output.FormatJSON
	deliver := func(ev *events.Event) {
		if jsonMode {
			_ = output.JSON(os.Stdout, ev)
			return
		}
		output.EventCompact(os.Stdout, ev)
	}

	w, err := events.NewWatcher(events.NewClassifier(v), deliver)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Run(ctx, func(err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
	})
	return nil
}

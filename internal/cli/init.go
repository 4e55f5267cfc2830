package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/world"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or migrate a world database",
		Long: `Create a world database at the configured path, or migrate an
existing one to the current schema version. Idempotent.

Example:
  ripple init --db ./world.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := database
			if path == "" {
				path = rootOpts.Config.Database
			}

			slog.Info("initializing world", "path", path)
			w, err := world.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize world", err)
			}
			if err := w.Close(); err != nil {
				return WrapExitError(ExitCommandError, "failed to close world", err)
			}

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			p.Text("world ready at %s", path)
			return p.JSON(map[string]any{"status": "ok", "database": path})
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "world database path (overrides config)")

	return cmd
}

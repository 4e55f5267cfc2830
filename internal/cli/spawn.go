package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// NewSpawnCommand creates the spawn command.
func NewSpawnCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		database string
		parent   string
	)

	cmd := &cobra.Command{
		Use:   "spawn <name>",
		Short: "Add an entity to the world hierarchy",
		Long: `Spawn a named entity, optionally under a parent. Entity names are
unique within one world.

Example:
  ripple spawn root --db ./world.db
  ripple spawn button --parent root --db ./world.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path := database
			if path == "" {
				path = rootOpts.Config.Database
			}

			w, err := world.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open world", err)
			}
			defer w.Close()

			ctx := cmd.Context()

			parentID := event.NoEntity
			if parent != "" {
				id, ok, err := w.EntityByName(ctx, parent)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to resolve parent", err)
				}
				if !ok {
					return NewExitError(ExitCommandError, fmt.Sprintf("parent entity %q not found", parent))
				}
				parentID = id
			}

			id, err := w.Spawn(ctx, name, parentID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to spawn entity", err)
			}

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			p.Text("spawned %s (id %d)", name, id)
			return p.JSON(map[string]any{
				"status": "ok",
				"entity": map[string]any{"id": int64(id), "name": name, "parent": parent},
			})
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "world database path (overrides config)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent entity name (default: spawn a root)")

	return cmd
}

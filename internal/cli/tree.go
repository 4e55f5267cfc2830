package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		database string
		state    string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the entity hierarchy",
		Long: `Print the entity hierarchy, children indented under their parents.
With --state key=value only entities carrying that state are printed,
as a flat list.

Example:
  ripple tree --db ./world.db
  ripple tree --db ./world.db --state color=red`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := database
			if path == "" {
				path = rootOpts.Config.Database
			}

			w, err := world.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open world", err)
			}
			defer w.Close()

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			if state != "" {
				return runStateFilter(cmd, w, p, state)
			}

			entities, err := w.Entities(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read entities", err)
			}

			children := make(map[event.EntityID][]world.Entity)
			for _, e := range entities {
				children[e.Parent] = append(children[e.Parent], e)
			}
			var render func(parent event.EntityID, depth int)
			render = func(parent event.EntityID, depth int) {
				for _, e := range children[parent] {
					p.Text("%s%s (id %d)", strings.Repeat("  ", depth), e.Name, e.ID)
					render(e.ID, depth+1)
				}
			}
			render(event.NoEntity, 0)

			nodes := make([]map[string]any, len(entities))
			for i, e := range entities {
				nodes[i] = map[string]any{
					"id":     int64(e.ID),
					"name":   e.Name,
					"parent": int64(e.Parent),
				}
			}
			if err := p.JSON(map[string]any{"status": "ok", "entities": nodes}); err != nil {
				return fmt.Errorf("encode entities: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "world database path (overrides config)")
	cmd.Flags().StringVar(&state, "state", "", "filter entities by state, as key=value")

	return cmd
}

// runStateFilter lists the entities whose state matches a key=value filter.
func runStateFilter(cmd *cobra.Command, w *world.World, p *Printer, filter string) error {
	key, value, ok := strings.Cut(filter, "=")
	if !ok || key == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --state filter %q: want key=value", filter))
	}

	ctx := cmd.Context()

	ids, err := w.EntitiesWithState(ctx, key, value)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query state", err)
	}

	matches := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		name, _, err := w.EntityName(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve entity", err)
		}
		p.Text("%s (id %d)", name, id)
		matches = append(matches, map[string]any{"id": int64(id), "name": name})
	}

	return p.JSON(map[string]any{
		"status":   "ok",
		"key":      key,
		"value":    value,
		"entities": matches,
	})
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/world"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "trace <token>",
		Short: "Show the journaled deliveries of one dispatch",
		Long: `Read the delivery journal for a dispatch token, in the deterministic
journal order (seq, then id).

Example:
  ripple trace pass-1 --db ./world.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			path := database
			if path == "" {
				path = rootOpts.Config.Database
			}

			w, err := world.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open world", err)
			}
			defer w.Close()

			deliveries, err := w.ReadTrace(cmd.Context(), token)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read trace", err)
			}
			if len(deliveries) == 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("no deliveries for token %q", token))
			}

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			rows := make([]map[string]any, len(deliveries))
			for i, d := range deliveries {
				p.Text("seq %d: %s target=%d listener=%d stopped=%v payload=%s",
					d.Seq, d.Event, d.Target, d.Listener, d.Stopped, d.Payload)
				rows[i] = map[string]any{
					"id":       d.ID,
					"seq":      d.Seq,
					"event":    d.Event,
					"target":   int64(d.Target),
					"listener": int64(d.Listener),
					"stopped":  d.Stopped,
					"payload":  d.Payload,
				}
			}
			return p.JSON(map[string]any{
				"status":     "ok",
				"token":      token,
				"deliveries": rows,
			})
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "world database path (overrides config)")

	return cmd
}

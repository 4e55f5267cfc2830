package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/scenario"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run a scenario and check its assertions",
		Long: `Run a scenario (YAML or CUE): spawn its entity hierarchy, register
its listeners, dispatch its events in order, then check every
assertion. Exits 1 when any assertion fails.

By default the run uses a fresh in-memory world; pass --db to run
against a database file and keep the journal.

Example:
  ripple run scenarios/bubble-stop.yaml
  ripple run scenarios/bubble-stop.yaml --db ./world.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load scenario", err)
			}

			ctx := cmd.Context()

			rr, err := scenario.RunOn(ctx, s, database)
			if err != nil {
				return WrapExitError(ExitCommandError, "scenario run failed", err)
			}
			defer rr.World.Close()

			failures := scenario.Check(ctx, s, rr)

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			passes := make([]map[string]any, len(rr.Results))
			for i, res := range rr.Results {
				p.Text("pass %s: event %s delivered %d, stopped=%v",
					res.Token, res.Event, res.Delivered(), res.Stopped)
				passes[i] = map[string]any{
					"token":      res.Token,
					"event":      res.Event,
					"deliveries": res.Delivered(),
					"stopped":    res.Stopped,
				}
			}
			for _, f := range failures {
				p.Text("FAIL: %v", f)
			}

			status := "ok"
			if len(failures) > 0 {
				status = "failed"
			}
			msgs := make([]string, len(failures))
			for i, f := range failures {
				msgs[i] = f.Error()
			}
			if err := p.JSON(map[string]any{
				"status":   status,
				"scenario": s.Name,
				"passes":   passes,
				"failures": msgs,
			}); err != nil {
				return fmt.Errorf("encode run result: %w", err)
			}

			if len(failures) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(failures)))
			}
			p.Text("all %d assertion(s) passed", len(s.Assertions))
			return nil
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "world database path (default: in-memory)")

	return cmd
}

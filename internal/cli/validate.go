package cli

import (
	"github.com/spf13/cobra"

	"github.com/riverine/ripple/internal/scenario"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file>...",
		Short: "Check scenario files without running them",
		Long: `Parse and validate one or more scenario files (YAML or CUE). Nothing
is dispatched; exit code 2 when any file is invalid.

Example:
  ripple validate scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			type fileResult struct {
				Path     string `json:"path"`
				Valid    bool   `json:"valid"`
				Scenario string `json:"scenario,omitempty"`
				Error    string `json:"error,omitempty"`
			}

			results := make([]fileResult, 0, len(args))
			invalid := 0
			for _, path := range args {
				s, err := scenario.Load(path)
				if err != nil {
					invalid++
					p.Text("%s: INVALID: %v", path, err)
					results = append(results, fileResult{Path: path, Error: err.Error()})
					continue
				}
				p.Text("%s: ok (%s)", path, s.Name)
				results = append(results, fileResult{Path: path, Valid: true, Scenario: s.Name})
			}

			status := "ok"
			if invalid > 0 {
				status = "invalid"
			}
			if err := p.JSON(map[string]any{"status": status, "files": results}); err != nil {
				return err
			}

			if invalid > 0 {
				return NewExitError(ExitCommandError, "one or more scenarios are invalid")
			}
			return nil
		},
	}

	return cmd
}

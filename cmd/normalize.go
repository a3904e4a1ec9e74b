package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/agentic/internal/temporal"
)

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [args json]",
		Short: "Normalize the time arguments of a tool plan",
		Long: `Rewrite due, start_iso and end_iso as RFC3339 instants in the configured
time zone. Instants in a past year are moved to the current year. Other
keys and unparseable values are passed through.

Example:
  agentic normalize '{"title":"Gym","start_iso":"2024-08-20 18:00"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var toolArgs map[string]any
			if err := json.Unmarshal([]byte(text), &toolArgs); err != nil {
				return fmt.Errorf("arguments must be a JSON object: %w", err)
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			normalizer := temporal.New(temporal.Config{Location: cfg.Location()})
			return writeJSON(cmd.OutOrStdout(), normalizer.NormalizeArgs(toolArgs))
		},
	}

	return cmd
}

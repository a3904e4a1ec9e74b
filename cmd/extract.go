package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teemow/agentic/internal/planner"
	"github.com/teemow/agentic/internal/temporal"
)

func newExtractCmd() *cobra.Command {
	var aggressive bool

	cmd := &cobra.Command{
		Use:   "extract [model output]",
		Short: "Extract a tool plan from model output",
		Long: `Extract the last JSON object from free-form model output and print it as a
normalized plan. Code fences, role markers, smart quotes and trailing commas
are tolerated. No model or Google access is needed.

Examples:
  agentic extract '[ASSISTANT] {"tool":"mail","args":{"days":3},}'
  cat answer.txt | agentic extract --aggressive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			extractor := planner.Extractor{AggressiveRepair: aggressive || cfg.Planner.AggressiveRepair}
			normalizer := temporal.New(temporal.Config{Location: cfg.Location()})

			return writeJSON(cmd.OutOrStdout(), extractor.ExtractNormalized(text, normalizer))
		},
	}

	cmd.Flags().BoolVar(&aggressive, "aggressive", false, "Fall back to full JSON repair when the light repair fails")

	return cmd
}

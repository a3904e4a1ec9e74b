package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask [request]",
		Short: "Handle a single request end to end",
		Long: `Plan the request with the language model, run at most one tool and print
the final answer. The request is read from the arguments or from stdin.

Examples:
  agentic ask "yarın 15:00'te spor ekle"
  echo "bu hafta boş zamanım ne zaman?" | agentic ask --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			sc, err := newServerContext(cmd.Context(), cfg, logger, runtimeOptions{})
			if err != nil {
				return err
			}
			defer func() {
				_ = sc.Shutdown()
			}()

			resp, err := sc.Assistant().Handle(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, resp)
			}

			if resp.ToolOutput != nil {
				fmt.Fprintf(out, "[%s] %s\n\n", resp.ToolCall.Tool, resp.Summary)
			}
			fmt.Fprintln(out, resp.FinalAnswer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan, tool output and answer as JSON")

	return cmd
}

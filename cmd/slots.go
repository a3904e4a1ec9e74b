package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/teemow/agentic/internal/dispatch"
	"github.com/teemow/agentic/internal/temporal"
)

func newSlotsCmd() *cobra.Command {
	var (
		start      string
		end        string
		blockHours float64
		topK       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free calendar blocks inside the work window",
		Long: `List back-to-back free blocks inside the daily work window, skipping busy
calendar times. Without --start and --end the next seven days are searched.

Examples:
  agentic slots --start 2025-08-18 --end 2025-08-22
  agentic slots --block-hours 1 --top-k 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			toolArgs := map[string]any{}
			if start != "" {
				toolArgs[temporal.KeyStartISO] = start
			}
			if end != "" {
				toolArgs[temporal.KeyEndISO] = end
			}
			if cmd.Flags().Changed("block-hours") {
				toolArgs["block_hours"] = blockHours
			}
			if cmd.Flags().Changed("top-k") {
				toolArgs["top_k"] = topK
			}

			res := sc.Dispatcher().Dispatch(cmd.Context(), dispatch.ToolCalendar, toolArgs)
			if res.Failed() {
				return errors.New(res.Error)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, res)
			}
			_, err = out.Write([]byte(dispatch.Summarize(res) + "\n"))
			return err
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Range start, a date or a date-time (default: today)")
	cmd.Flags().StringVar(&end, "end", "", "Range end; a bare date means the end of that day (default: today + 7 days)")
	cmd.Flags().Float64Var(&blockHours, "block-hours", 0, "Block length in hours (default: the configured block length)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Return only the first N slots")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}

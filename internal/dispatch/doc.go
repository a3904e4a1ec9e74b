// Package dispatch routes a planned tool call to its provider.
//
// The tool set is calendar, mail, task and none. Loosely typed plan
// arguments are converted into one Args variant per tool by ParseArgs;
// missing or unusable fields surface as *ValidationError.
//
// Dispatch contains every failure. Validation errors, provider errors and
// panics come back as a Result with OutcomeError, which renders as
// {"error", "tool", "args"}. An unrecognized tool name is not an error: it
// yields a warning result {"warning", "args"}. The explicit no-op "none"
// renders as null.
//
// Example:
//
//	d := dispatch.New(dispatch.Config{
//		Normalizer: normalizer,
//		Calendar:   calendarClient,
//		Mail:       gmailClient,
//		Tasks:      tasksClient,
//	})
//	res := d.Dispatch(ctx, "calendar", map[string]any{"block_hours": 1})
//	fmt.Println(dispatch.Summarize(res))
package dispatch

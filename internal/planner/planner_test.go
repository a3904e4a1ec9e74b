package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/temporal"
)

type scriptedCompleter struct {
	answers []string
	err     error
	prompts []string
	opts    []llm.Options
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string, opts llm.Options) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func newTestPlanner(c Completer) *Planner {
	now := time.Date(2025, 8, 20, 9, 30, 0, 0, istanbul)
	n := temporal.New(temporal.Config{Location: istanbul, Now: func() time.Time { return now }})
	return New(c, n)
}

func TestPlanner_Strict(t *testing.T) {
	c := &scriptedCompleter{answers: []string{
		`{"tool":"task","args":{"title":"Prepare demo","due":"2024-08-22T10:00"},"reason":"todo"}`,
	}}

	res, err := newTestPlanner(c).Plan(context.Background(), "Cuma 10'da demo hazırla")
	require.NoError(t, err)

	assert.Equal(t, SourceStrict, res.Source)
	assert.False(t, res.Reprompted)
	assert.Equal(t, "task", res.Plan.Tool)
	assert.Equal(t, "todo", res.Plan.Reason)
	assert.Equal(t, "Prepare demo", res.Plan.Args["title"])
	assert.Equal(t, "2025-08-22T10:00:00+03:00", res.Plan.Args["due"])
	require.Len(t, c.prompts, 1)
	assert.Equal(t, 220, c.opts[0].MaxTokens)
}

func TestPlanner_Reprompt(t *testing.T) {
	c := &scriptedCompleter{answers: []string{
		"Sure! I will check your mail.",
		`{"tool":"mail","args":{"days":3},"reason":"inbox"}`,
	}}

	res, err := newTestPlanner(c).Plan(context.Background(), "son 3 günün maillerini özetle")
	require.NoError(t, err)

	assert.True(t, res.Reprompted)
	assert.Equal(t, SourceStrict, res.Source)
	assert.Equal(t, "mail", res.Plan.Tool)
	assert.Equal(t, `{"tool":"mail","args":{"days":3},"reason":"inbox"}`, res.PlanText)

	require.Len(t, c.prompts, 2)
	assert.True(t, strings.HasSuffix(c.prompts[1], strictSuffix))
	require.NotNil(t, c.opts[1].Temperature)
	assert.Equal(t, float32(0), *c.opts[1].Temperature)
}

func TestPlanner_Fallback(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"no idea", "still no idea"}}

	res, err := newTestPlanner(c).Plan(context.Background(), "yarın için takvimime bak")
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ToolCalendar, res.Plan.Tool)
	assert.Equal(t, "2025-08-20T13:00:00+03:00", res.Plan.Args["start_iso"])
	assert.Equal(t, "2025-08-27T18:00:00+03:00", res.Plan.Args["end_iso"])
	assert.Equal(t, 2, res.Plan.Args["block_hours"])
}

func TestPlanner_FallbackNone(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"hmm", "hmm"}}

	res, err := newTestPlanner(c).Plan(context.Background(), "how are you")
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ToolNone, res.Plan.Tool)
	assert.Empty(t, res.Plan.Args)
}

func TestPlanner_ObjectWithoutToolIsReprompted(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"{}", `{"args":{},"reason":"?"}`}}

	res, err := newTestPlanner(c).Plan(context.Background(), "yarın takvimim")
	require.NoError(t, err)

	assert.True(t, res.Reprompted)
	assert.Len(t, c.prompts, 2)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ToolCalendar, res.Plan.Tool)
}

func TestPlanner_EmptyObjectThenPlan(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"```json\n{}\n```", `{"tool":"none","args":{}}`}}

	res, err := newTestPlanner(c).Plan(context.Background(), "merhaba")
	require.NoError(t, err)

	assert.True(t, res.Reprompted)
	assert.Equal(t, SourceStrict, res.Source)
	assert.Equal(t, ToolNone, res.Plan.Tool)
}

func TestPlanner_CompletionError(t *testing.T) {
	c := &scriptedCompleter{err: errors.New("connection refused")}

	res, err := newTestPlanner(c).Plan(context.Background(), "hi")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "connection refused")
}

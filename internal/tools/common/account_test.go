package common

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		fallback string
		expected string
	}{
		{
			name:     "no account specified returns default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name:     "no account specified returns fallback",
			args:     map[string]interface{}{},
			fallback: "work",
			expected: "work",
		},
		{
			name:     "account specified wins over fallback",
			args:     map[string]interface{}{"account": "personal"},
			fallback: "work",
			expected: "personal",
		},
		{
			name:     "empty account returns fallback",
			args:     map[string]interface{}{"account": ""},
			fallback: "work",
			expected: "work",
		},
		{
			name:     "non-string account is ignored",
			args:     map[string]interface{}{"account": 42},
			expected: "default",
		},
		{
			name:     "nil args returns default",
			args:     nil,
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(tt.args, tt.fallback))
		})
	}
}

func TestObjectArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    map[string]any
		wantErr bool
	}{
		{name: "missing", args: map[string]interface{}{}, want: map[string]any{}},
		{name: "object", args: map[string]interface{}{"args": map[string]any{"days": 3.0}}, want: map[string]any{"days": 3.0}},
		{name: "json string", args: map[string]interface{}{"args": `{"title":"Gym"}`}, want: map[string]any{"title": "Gym"}},
		{name: "empty string", args: map[string]interface{}{"args": ""}, want: map[string]any{}},
		{name: "json null", args: map[string]interface{}{"args": "null"}, want: map[string]any{}},
		{name: "invalid json", args: map[string]interface{}{"args": "{oops"}, wantErr: true},
		{name: "wrong type", args: map[string]interface{}{"args": []any{1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ObjectArg(tt.args, "args")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]interface{}{"text": "hello", "empty": "", "number": 1}

	v, ok := StringArg(args, "text")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	for _, key := range []string{"empty", "number", "missing"} {
		_, ok := StringArg(args, key)
		assert.False(t, ok, key)
	}
}

func TestJSONResult(t *testing.T) {
	result, err := JSONResult(map[string]int{"n": 1})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, text.Text)
	assert.False(t, result.IsError)
}

package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/agentic/internal/google"
)

// GetAccountFromArgs extracts the account name from request arguments.
//
// Priority order:
//  1. Explicit "account" argument in request
//  2. fallback, usually the configured account
//  3. "default"
func GetAccountFromArgs(args map[string]interface{}, fallback string) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	if fallback != "" {
		return fallback
	}
	return google.DefaultAccount
}

// StringArg returns a non-empty string argument and whether it was set
func StringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ObjectArg returns an object argument. A JSON string holding an object is
// accepted too, for clients that cannot send nested objects.
func ObjectArg(args map[string]interface{}, key string) (map[string]any, error) {
	switch v := args[key].(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return map[string]any{}, nil
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
		}
		if obj == nil {
			obj = map[string]any{}
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%s must be an object", key)
	}
}

// JSONResult renders v as an indented JSON text result
func JSONResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

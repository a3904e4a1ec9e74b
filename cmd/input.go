package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errNoInput is returned when neither arguments nor stdin carry a request
var errNoInput = errors.New("no input: pass it as arguments or on stdin")

// readInput joins the arguments, or reads in when there are none
func readInput(args []string, in io.Reader) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && in != nil {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return "", errNoInput
	}
	return text, nil
}

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

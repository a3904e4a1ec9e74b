package planner

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/teemow/agentic/internal/temporal"
)

// Source tells how a plan object was obtained
type Source string

const (
	SourceStrict   Source = "strict"
	SourceRepaired Source = "repaired"
	SourceFallback Source = "fallback"
)

var (
	fencePattern = regexp.MustCompile("(?im)^```(?:json)?\\s*|\\s*```$")
	roleMarkers  = strings.NewReplacer(
		"[/ASSISTANT]", "",
		"[ASSISTANT]", "",
		"[/USER]", "",
		"[USER]", "",
	)
	smartQuotes = strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"’", "'",
	)
	trailingObjectComma = regexp.MustCompile(`,\s*}`)
	trailingArrayComma  = regexp.MustCompile(`,\s*]`)
)

// ExtractPlan pulls the last JSON object out of free-form model output.
// It tries a strict parse first and a single lightly repaired parse second.
// It never fails loudly: false means no structured command was found.
func ExtractPlan(text string) (map[string]any, bool) {
	obj, src := Extractor{}.Extract(text)
	return obj, src != SourceFallback
}

// Extractor extracts plan objects from model output
type Extractor struct {
	// AggressiveRepair enables a last attempt through a full JSON repair
	// library after the light repair failed.
	AggressiveRepair bool
}

// Extract returns the parsed object and how it was obtained.
// SourceFallback with a nil object means nothing could be parsed.
func (e Extractor) Extract(text string) (map[string]any, Source) {
	span, ok := findSpan(text)
	if !ok {
		return nil, SourceFallback
	}

	if obj, ok := decodeObject(span); ok {
		return obj, SourceStrict
	}
	if obj, ok := decodeObject(lightRepair(span)); ok {
		return obj, SourceRepaired
	}

	if e.AggressiveRepair {
		repaired, err := jsonrepair.JSONRepair(span)
		if err == nil {
			if obj, ok := decodeObject(repaired); ok {
				return obj, SourceRepaired
			}
		}
	}

	return nil, SourceFallback
}

// Extraction is a plan found in model output, without the keyword fallback
type Extraction struct {
	Found  bool   `json:"found"`
	Source Source `json:"source"`
	Plan   *Plan  `json:"plan"`
}

// ExtractNormalized extracts a plan and normalizes its time arguments.
// Plan is nil when nothing could be parsed.
func (e Extractor) ExtractNormalized(text string, normalizer *temporal.Normalizer) Extraction {
	obj, src := e.Extract(text)
	if src == SourceFallback {
		return Extraction{Source: src}
	}

	plan := FromObject(obj)
	plan.Args = normalizer.NormalizeArgs(plan.Args)
	return Extraction{Found: true, Source: src, Plan: &plan}
}

// stripFences removes markdown code fences and chat role markers
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = fencePattern.ReplaceAllString(text, "")
	text = roleMarkers.Replace(text)
	return strings.TrimSpace(text)
}

// findSpan locates the last balanced {...} block, scanning backwards from
// the last closing brace. Without a balanced block it falls back to the
// first opening brace paired with the last closing one.
func findSpan(text string) (string, bool) {
	s := stripFences(text)

	closeIdx := strings.LastIndexByte(s, '}')
	if closeIdx < 0 {
		return "", false
	}

	balance := 0
	for i := closeIdx; i >= 0; i-- {
		switch s[i] {
		case '}':
			balance++
		case '{':
			balance--
			if balance == 0 {
				return s[i : closeIdx+1], true
			}
		}
	}

	// a stray closing brace before an unclosed object leaves no span
	first := strings.IndexByte(s, '{')
	if first < 0 || first > closeIdx {
		return "", false
	}
	return s[first : closeIdx+1], true
}

// lightRepair fixes the mistakes small models make most often
func lightRepair(span string) string {
	j := stripFences(span)
	j = smartQuotes.Replace(j)
	if !strings.Contains(j, `"`) && strings.Contains(j, "'") {
		j = strings.ReplaceAll(j, "'", `"`)
	}
	j = trailingObjectComma.ReplaceAllString(j, "}")
	j = trailingArrayComma.ReplaceAllString(j, "]")
	if missing := strings.Count(j, "{") - strings.Count(j, "}"); missing > 0 {
		j += strings.Repeat("}", missing)
	}
	return j
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

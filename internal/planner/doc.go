// Package planner asks a language model which single tool to call and
// extracts the answer.
//
// Model output is treated as untrusted text. ExtractPlan locates the last
// JSON object in it, tries a strict parse and then one light repair. When
// nothing can be parsed the caller gets no object instead of an error and
// uses Fallback, a keyword heuristic that either queries the calendar or
// does nothing.
package planner

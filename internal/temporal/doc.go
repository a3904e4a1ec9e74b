// Package temporal turns loosely formatted date/time strings produced by a
// language model into canonical RFC3339 instants in one configured zone.
//
// Parsing is tolerant: bare dates, missing seconds, fractional seconds and
// a space instead of the "T" separator are all accepted. Instants that fall
// in a past year are assumed to be a model mistake and are moved to the
// current year.
package temporal

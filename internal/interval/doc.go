// Package interval implements the small amount of time-interval algebra the
// availability engine needs: overlap tests, intersection and subtraction of
// busy periods from a free window.
//
// All intervals are half-open, [Start, End). Intervals with Start >= End are
// invalid; constructors reject them and algorithms filter them out rather than
// reordering their bounds.
package interval

// Package availability finds free meeting slots in a busy calendar.
//
// Each day of the requested range contributes its work window (13:00-19:00
// by default), clipped to the range. Busy intervals are subtracted from the
// window and the remaining segments are cut into back-to-back blocks of a
// fixed length. Shorter remainders are never returned.
//
// The zone, the window bounds and the default block length are passed in
// through Config so the engine behaves the same in every process zone.
package availability

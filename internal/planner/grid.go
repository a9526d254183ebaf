// Package planner materialises missing (treasury, day-window) and
// (token, timestamp) tuples into the two backlog tables (spec.md
// §4.4).
package planner

// Interval is the daily grid spacing, in seconds.
const Interval int64 = 86400

// MinTimestamp is the earliest grid point the system tracks.
const MinTimestamp int64 = 1534377600

// Grid returns the strictly increasing daily timestamp sequence of day
// boundaries from floor(MinTimestamp/Interval)*Interval through
// floor(now/Interval)*Interval, given now (unix seconds). Grid points
// are boundaries, not days: the window between consecutive points
// grid[i-1] and grid[i] is the complete day they bracket, so the last
// point must be today's day-start to close the window for yesterday,
// the most recently completed day.
func Grid(now int64) []int64 {
	start := (MinTimestamp / Interval) * Interval
	end := (now / Interval) * Interval

	if end <= start {
		return []int64{start}
	}

	grid := make([]int64, 0, (end-start)/Interval+1)
	for t := start; t <= end; t += Interval {
		grid = append(grid, t)
	}
	return grid
}

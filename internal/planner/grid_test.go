package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridStartsAtMinTimestamp(t *testing.T) {
	now := MinTimestamp + 5*Interval + 3600 // mid-day, 5 days after min
	grid := Grid(now)
	assert.Equal(t, MinTimestamp, grid[0])
}

func TestGridEndsAtTodayStart(t *testing.T) {
	todayStart := MinTimestamp + 10*Interval
	now := todayStart + 3600 // a few hours into "today"
	grid := Grid(now)

	last := grid[len(grid)-1]
	assert.Equal(t, todayStart, last)
	assert.NotEqual(t, todayStart-Interval, last)
}

func TestGridIsDailySpaced(t *testing.T) {
	now := MinTimestamp + 3*Interval
	grid := Grid(now)
	for i := 1; i < len(grid); i++ {
		assert.Equal(t, Interval, grid[i]-grid[i-1])
	}
}

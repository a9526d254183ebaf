package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/planner"
)

func TestSnapToGridFloorsToInterval(t *testing.T) {
	day := planner.MinTimestamp + 5*planner.Interval
	returned := day + 3600 // a few hours into the day
	requested := []int64{day}

	assert.Equal(t, day, snapToGrid(returned, requested))
}

func TestSnapToGridClampsToMinRequested(t *testing.T) {
	day := planner.MinTimestamp
	// Oracle snaps to a point before anything we asked for.
	returned := day - 10*planner.Interval
	requested := []int64{day, day + planner.Interval}

	assert.Equal(t, day, snapToGrid(returned, requested))
}

package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/pkg/logger"
)

type countingJob struct {
	name  string
	calls int32
	err   error
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Run() error {
	atomic.AddInt32(&j.calls, 1)
	return j.err
}

func newTestLogger() logger.Config {
	return logger.Config{Level: "error", Pretty: false}
}

func TestRunNowExecutesJobOnce(t *testing.T) {
	s := New(logger.New(newTestLogger()))
	job := &countingJob{name: "test"}

	err := s.RunNow(job)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&job.calls))
}

func TestRunNowPropagatesJobError(t *testing.T) {
	s := New(logger.New(newTestLogger()))
	job := &countingJob{name: "failing", err: errors.New("boom")}

	err := s.RunNow(job)
	assert.Error(t, err)
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(logger.New(newTestLogger()))
	job := &countingJob{name: "bad-schedule"}

	err := s.AddJob("not a cron expression", job)
	assert.Error(t, err)
}

func TestAddConcurrentJobRejectsInvalidSchedule(t *testing.T) {
	s := New(logger.New(newTestLogger()))
	job := &countingJob{name: "bad-schedule"}

	err := s.AddConcurrentJob("not a cron expression", job, 4)
	assert.Error(t, err)
}

func TestAddConcurrentJobAccepted(t *testing.T) {
	s := New(logger.New(newTestLogger()))
	job := &countingJob{name: "concurrent"}

	err := s.AddConcurrentJob("* * * * * *", job, 8)
	assert.NoError(t, err)
}

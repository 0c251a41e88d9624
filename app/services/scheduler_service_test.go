package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerStopReturnsPromptly(t *testing.T) {
	db := openTestDB(t)
	scheduler := NewAnalysisScheduler(newTestPipeline(db), "02:00")
	require.NoError(t, scheduler.Start())

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSchedulerStartWhileRunning(t *testing.T) {
	db := openTestDB(t)
	scheduler := NewAnalysisScheduler(newTestPipeline(db), "02:00")
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	assert.Error(t, scheduler.Start())
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	db := openTestDB(t)
	scheduler := NewAnalysisScheduler(newTestPipeline(db), "02:00")
	scheduler.Stop()
	assert.False(t, scheduler.running)
}

func TestTimeUntilNextRunFallsBackOnBadFormat(t *testing.T) {
	db := openTestDB(t)
	scheduler := NewAnalysisScheduler(newTestPipeline(db), "not-a-time")

	duration := scheduler.timeUntilNextRun()
	assert.Greater(t, duration, time.Duration(0))
	assert.LessOrEqual(t, duration, 24*time.Hour)
}

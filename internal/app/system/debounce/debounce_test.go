package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 10)
	d := New(30*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
		done <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncer_SeparateBurstsRunTwice(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 10)
	d := New(10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
		done <- struct{}{}
	})
	defer d.Stop()

	d.Trigger()
	<-done
	d.Trigger()
	<-done

	assert.Equal(t, int32(2), runs.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func(ctx context.Context) { runs.Add(1) })

	d.Trigger()
	require.True(t, d.Pending())
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.False(t, d.Pending())

	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestDebouncer_StopCancelsRunningTask(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool
	d := New(time.Millisecond, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	})

	d.Trigger()
	<-started
	d.Stop()

	assert.True(t, cancelled.Load())
}

func TestDebouncer_TriggerCancelsRunningTask(t *testing.T) {
	started := make(chan struct{}, 2)
	firstCancelled := make(chan struct{})
	var calls atomic.Int32
	d := New(time.Millisecond, func(ctx context.Context) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			<-ctx.Done()
			close(firstCancelled)
		}
	})
	defer d.Stop()

	d.Trigger()
	<-started
	d.Trigger()

	select {
	case <-firstCancelled:
	case <-time.After(time.Second):
		t.Fatal("running task was not cancelled by a new trigger")
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("second task never ran")
	}
}

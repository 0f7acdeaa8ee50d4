// Package debounce runs a task once a burst of triggers has gone quiet.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Task is the work a Debouncer runs. ctx is cancelled when the Debouncer is
// stopped or when a newer trigger fires while the task is still running.
type Task func(ctx context.Context)

// Debouncer is a cancellable trailing-edge timer. Each Trigger restarts the
// wait; the task runs once, wait after the last Trigger.
type Debouncer struct {
	wait time.Duration
	task Task

	mu      sync.Mutex
	parent  context.Context
	stop    context.CancelFunc
	timer   *time.Timer
	cancel  context.CancelFunc // cancels the running task, if any
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

// New returns a Debouncer that runs task wait after the last trigger.
func New(wait time.Duration, task Task) *Debouncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{wait: wait, task: task, parent: ctx, stop: cancel}
}

// Trigger (re)starts the wait. A task already running is cancelled.
// Trigger after Stop does nothing.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Pending reports whether a trigger is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		if gen == d.gen && d.cancel != nil {
			d.cancel = nil
		}
		d.mu.Unlock()
		cancel()
	}()
	d.task(ctx)
}

// Stop cancels any pending trigger and any running task, then waits for the
// task to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.stop()
	d.mu.Unlock()

	d.wg.Wait()
}

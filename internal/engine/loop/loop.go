// Package loop schedules per-frame callbacks and render-thread tasks.
package loop

import (
	"context"
	"sync"
	"time"
)

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameFunc is called once with the frame timestamp.
type FrameFunc func(now time.Time)

// Scheduler is what the engine and sprite need from a host's frame loop.
// Implementations run frame callbacks and posted tasks on the render thread.
type Scheduler interface {
	// RequestFrame schedules fn for the next frame.
	RequestFrame(fn FrameFunc) FrameID
	// CancelFrame drops a pending request. Unknown or spent IDs are ignored.
	CancelFrame(id FrameID)
	// Post runs fn on the render thread as soon as possible.
	// It may be called from any goroutine.
	Post(fn func())
}

// Queue is an in-process Scheduler. The owner of the render thread drains it
// with RunTasks and RunFrame; other goroutines may request and post freely.
type Queue struct {
	mu     sync.Mutex
	nextID FrameID
	frames map[FrameID]FrameFunc
	order  []FrameID
	tasks  []func()
	wake   chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{
		frames: make(map[FrameID]FrameFunc),
		wake:   make(chan struct{}, 1),
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// RequestFrame implements Scheduler.
func (q *Queue) RequestFrame(fn FrameFunc) FrameID {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.frames[id] = fn
	q.order = append(q.order, id)
	q.mu.Unlock()

	q.signal()
	return id
}

// CancelFrame implements Scheduler.
func (q *Queue) CancelFrame(id FrameID) {
	q.mu.Lock()
	delete(q.frames, id)
	q.mu.Unlock()
}

// Post implements Scheduler.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	q.signal()
}

// RunTasks runs every posted task, including ones posted by the tasks
// themselves, and returns how many ran.
func (q *Queue) RunTasks() int {
	n := 0
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		q.mu.Unlock()

		if len(tasks) == 0 {
			return n
		}
		for _, fn := range tasks {
			fn()
			n++
		}
	}
}

// RunFrame calls the frame callbacks that were pending when it was entered,
// in request order. Callbacks requested during the tick wait for the next one.
// It returns how many callbacks ran.
func (q *Queue) RunFrame(now time.Time) int {
	q.mu.Lock()
	order := q.order
	q.order = nil
	due := make([]FrameFunc, 0, len(order))
	for _, id := range order {
		if fn, ok := q.frames[id]; ok {
			due = append(due, fn)
			delete(q.frames, id)
		}
	}
	q.mu.Unlock()

	for _, fn := range due {
		fn(now)
	}
	return len(due)
}

// Pending reports the number of live frame requests and queued tasks.
func (q *Queue) Pending() (frames, tasks int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames), len(q.tasks)
}

// Wait blocks until a frame or task is queued, or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		if f, t := q.Pending(); f > 0 || t > 0 {
			return nil
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ Scheduler = (*Queue)(nil)

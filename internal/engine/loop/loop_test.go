package loop

import (
	"context"
	"testing"
	"time"
)

func TestRunFrameOrderAndSnapshot(t *testing.T) {
	q := NewQueue()
	var got []string

	q.RequestFrame(func(time.Time) {
		got = append(got, "a")
		q.RequestFrame(func(time.Time) { got = append(got, "c") })
	})
	q.RequestFrame(func(time.Time) { got = append(got, "b") })

	if n := q.RunFrame(time.Now()); n != 2 {
		t.Errorf("first RunFrame() = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("after first tick got %v, want [a b]", got)
	}

	if n := q.RunFrame(time.Now()); n != 1 {
		t.Errorf("second RunFrame() = %d, want 1", n)
	}
	if len(got) != 3 || got[2] != "c" {
		t.Errorf("after second tick got %v, want [a b c]", got)
	}
}

func TestCancelFrame(t *testing.T) {
	q := NewQueue()
	ran := false
	id := q.RequestFrame(func(time.Time) { ran = true })
	if id == 0 {
		t.Fatal("RequestFrame returned zero id")
	}

	q.CancelFrame(id)
	q.CancelFrame(id)
	q.CancelFrame(12345)

	if n := q.RunFrame(time.Now()); n != 0 {
		t.Errorf("RunFrame() = %d, want 0", n)
	}
	if ran {
		t.Error("cancelled callback ran")
	}
	if f, _ := q.Pending(); f != 0 {
		t.Errorf("pending frames = %d, want 0", f)
	}
}

func TestCancelDuringTick(t *testing.T) {
	q := NewQueue()
	var second FrameID
	ran := false
	q.RequestFrame(func(time.Time) { q.CancelFrame(second) })
	second = q.RequestFrame(func(time.Time) { ran = true })

	q.RunFrame(time.Now())
	if ran {
		t.Error("callback cancelled by an earlier callback in the same tick still ran")
	}
}

func TestRunFramePassesTimestamp(t *testing.T) {
	q := NewQueue()
	want := time.UnixMilli(1500)
	var got time.Time
	q.RequestFrame(func(now time.Time) { got = now })
	q.RunFrame(want)
	if !got.Equal(want) {
		t.Errorf("now = %v, want %v", got, want)
	}
}

func TestRunTasksDrainsNested(t *testing.T) {
	q := NewQueue()
	count := 0
	q.Post(func() {
		count++
		q.Post(func() { count++ })
	})

	if n := q.RunTasks(); n != 2 {
		t.Errorf("RunTasks() = %d, want 2", n)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if n := q.RunTasks(); n != 0 {
		t.Errorf("RunTasks() on empty queue = %d", n)
	}
}

func TestWaitWakesOnPost(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go q.Post(func() {})

	if err := q.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if _, tasks := q.Pending(); tasks != 1 {
		t.Errorf("pending tasks = %d, want 1", tasks)
	}
}

func TestWaitReturnsImmediatelyWhenPending(t *testing.T) {
	q := NewQueue()
	q.RequestFrame(func(time.Time) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Wait(ctx); err != nil {
		t.Errorf("Wait() error = %v, want nil", err)
	}
}

func TestWaitContextDone(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := q.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

package core

import (
	"testing"
	"time"
)

func TestFixedStepSteps(t *testing.T) {
	now := time.Unix(100, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return now }
	fs.accumulator = 0

	if n := fs.Steps(5); n != 0 {
		t.Fatalf("first call reported %d steps, want 0", n)
	}
	now = now.Add(250 * time.Millisecond)
	if n := fs.Steps(5); n != 2 {
		t.Fatalf("after 250ms got %d steps, want 2", n)
	}
	now = now.Add(50 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("leftover 50ms plus 50ms should complete a tick")
	}
	now = now.Add(10 * time.Second)
	if n := fs.Steps(3); n != 3 {
		t.Fatalf("stalled caller got %d steps, want cap 3", n)
	}
	if n := fs.Steps(3); n != 0 {
		t.Fatalf("backlog should be dropped after hitting the cap, got %d", n)
	}
}

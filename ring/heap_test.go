// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"testing"
)

func TestScenario1DropNewest(t *testing.T) {
	h := New[int](Config{Capacity: 4, Policy: DropNewest})
	for v := 1; v <= 4; v++ {
		v := v
		if _, err := h.TryPush(&v); err != nil {
			t.Fatalf("TryPush(%d) = %v, want nil", v, err)
		}
	}
	overflow := 5
	if _, err := h.TryPush(&overflow); err != ErrFull {
		t.Fatalf("TryPush(5) = %v, want ErrFull", err)
	}

	var got []int
	for i := 0; i < 4; i++ {
		v, err := h.TryPop()
		if err != nil {
			t.Fatalf("TryPop() = %v", err)
		}
		got = append(got, v)
	}
	want := []int{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("consumer sequence = %v, want %v", got, want)
		}
	}
}

func TestScenario2DropOldest(t *testing.T) {
	h := New[int](Config{Capacity: 4, Policy: DropOldest})
	for v := 1; v <= 5; v++ {
		v := v
		if _, err := h.TryPush(&v); err != nil {
			t.Fatalf("TryPush(%d) = %v, want nil", v, err)
		}
	}

	var got []int
	for i := 0; i < 4; i++ {
		v, err := h.TryPop()
		if err != nil {
			t.Fatalf("TryPop() = %v", err)
		}
		got = append(got, v)
	}
	want := []int{2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("consumer sequence = %v, want %v", got, want)
		}
	}
}

func TestSizeNeverExceedsCapacity(t *testing.T) {
	h := New[int](Config{Capacity: 8, Policy: DropNewest})
	for v := 0; v < 100; v++ {
		v := v
		h.TryPush(&v)
		if h.Len() > h.Cap() {
			t.Fatalf("Len() = %d exceeds Cap() = %d", h.Len(), h.Cap())
		}
	}
}

func TestPopOnlyReturnsPushedValues(t *testing.T) {
	h := New[int](Config{Capacity: 16, Policy: DropNewest})
	pushed := make(map[int]bool)
	for v := 0; v < 10; v++ {
		v := v
		if _, err := h.TryPush(&v); err == nil {
			pushed[v] = true
		}
	}
	for {
		v, err := h.TryPop()
		if err != nil {
			break
		}
		if !pushed[v] {
			t.Fatalf("TryPop() returned spurious value %d", v)
		}
	}
}

func TestSPSCOrderPreserved(t *testing.T) {
	h := New[int](Config{Capacity: 32, Policy: Block})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := 0; v < 1000; v++ {
			v := v
			for {
				if _, err := h.TryPush(&v); err == nil {
					break
				}
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		var v int
		var err error
		for {
			v, err = h.TryPop()
			if err == nil {
				break
			}
		}
		if v != i {
			t.Fatalf("out-of-order pop: got %d, want %d", v, i)
		}
	}
	<-done
}

func TestShutdownRejectsFurtherPushes(t *testing.T) {
	h := New[int](Config{Capacity: 4, Policy: DropNewest})
	h.Shutdown()
	v := 1
	if _, err := h.TryPush(&v); err != ErrShuttingDown {
		t.Fatalf("TryPush after Shutdown = %v, want ErrShuttingDown", err)
	}
}

func TestWFCFlushWatermark(t *testing.T) {
	h := New[int](Config{Capacity: 4, Policy: DropNewest})
	v := 1
	ticket, err := h.TryPush(&v)
	if err != nil {
		t.Fatalf("TryPush() = %v", err)
	}
	if h.AwaitFlush(ticket, 0) {
		t.Fatalf("AwaitFlush should not succeed before MarkFlushed")
	}
	h.MarkFlushed(ticket)
	if !h.AwaitFlush(ticket, 0) {
		t.Fatalf("AwaitFlush should succeed after MarkFlushed")
	}
}

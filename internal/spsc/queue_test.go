package spsc

import (
	"sync"
	"testing"
	"time"
)

func TestNewQueueRoundsUpCapacity(t *testing.T) {
	q := NewQueue[int](10)
	if q.Cap() != 16 {
		t.Fatalf("expected capacity rounded up to 16, got %d", q.Cap())
	}
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
}

func TestPushPopSingleElement(t *testing.T) {
	q := NewQueue[int](8)
	if !q.Push(42) {
		t.Fatal("push should succeed on empty queue")
	}
	v, ok := q.Pop()
	if !ok || v != 42 {
		t.Fatalf("expected (42, true), got (%d, %v)", v, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop on empty queue should return false")
	}
}

func TestPushPopPreservesOrder(t *testing.T) {
	q := NewQueue[int](8)
	values := []int{1, 2, 3, 4, 5, 6, 7}
	for _, v := range values {
		if !q.Push(v) {
			t.Fatalf("push %d failed unexpectedly", v)
		}
	}
	for _, want := range values {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
		}
	}
}

func TestPushFailsWhenFull(t *testing.T) {
	q := NewQueue[int](4) // effective capacity 3
	for i := 0; i < 3; i++ {
		if !q.Push(i) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if q.Push(99) {
		t.Fatal("push into full queue should fail, not block")
	}
	if _, ok := q.Pop(); !ok {
		t.Fatal("pop should free a slot")
	}
	if !q.Push(99) {
		t.Fatal("push should succeed after freeing a slot")
	}
}

func TestWrapAround(t *testing.T) {
	q := NewQueue[int](8) // effective capacity 7
	for round := 0; round < 5; round++ {
		for i := 0; i < 7; i++ {
			if !q.Push(round*100 + i) {
				t.Fatalf("round %d: push %d failed", round, i)
			}
		}
		for i := 0; i < 7; i++ {
			want := round*100 + i
			got, ok := q.Pop()
			if !ok || got != want {
				t.Fatalf("round %d: expected %d, got %d (ok=%v)", round, want, got, ok)
			}
		}
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	q := NewQueue[int](1024)
	const total = 200_000
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			for !q.Push(i) {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for next := 0; next < total; {
			v, ok := q.Pop()
			if !ok {
				time.Sleep(time.Microsecond)
				continue
			}
			if v != next {
				t.Errorf("expected %d, got %d", next, v)
			}
			next++
		}
	}()

	wg.Wait()
}

func TestLenAndIsEmpty(t *testing.T) {
	q := NewQueue[int](8)
	if !q.IsEmpty() || q.Len() != 0 {
		t.Fatalf("expected empty queue, got len=%d", q.Len())
	}
	q.Push(1)
	q.Push(2)
	if q.IsEmpty() || q.Len() != 2 {
		t.Fatalf("expected len=2, got len=%d empty=%v", q.Len(), q.IsEmpty())
	}
	q.Pop()
	if q.Len() != 1 {
		t.Fatalf("expected len=1 after one pop, got %d", q.Len())
	}
}

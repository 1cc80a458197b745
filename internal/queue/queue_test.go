package queue

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := New("a_1000.xlsx", "b_1102.xlsx")
	q.Enqueue("a_1000.xlsx")

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	for _, want := range []string{"a_1000.xlsx", "b_1102.xlsx", "a_1000.xlsx"} {
		got, ok := q.Dequeue()
		if !ok || got != want {
			t.Fatalf("Dequeue = %q, %v; want %q", got, ok, want)
		}
	}
	if !q.IsEmpty() {
		t.Fatal("queue not empty after draining")
	}
	if got, ok := q.Dequeue(); ok || got != "" {
		t.Fatalf("Dequeue on empty = %q, %v", got, ok)
	}
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	const n = 500
	q := New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Enqueue(fmt.Sprintf("f_%d.xlsx", i))
		}
	}()

	got := make([]string, 0, n)
	for len(got) < n {
		if p, ok := q.Dequeue(); ok {
			got = append(got, p)
		}
	}
	wg.Wait()

	for i, p := range got {
		if want := fmt.Sprintf("f_%d.xlsx", i); p != want {
			t.Fatalf("position %d = %q, want %q", i, p, want)
		}
	}
}

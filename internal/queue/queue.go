// Package queue holds the FIFO of source file paths waiting for a merge run.
package queue

import "sync"

// Queue is a FIFO of file paths. It is safe for one producer and one
// consumer to use concurrently. Paths are neither deduplicated nor
// reordered.
type Queue struct {
	mu    sync.Mutex
	paths []string
}

// New creates a queue holding paths in order.
func New(paths ...string) *Queue {
	q := &Queue{}
	q.Enqueue(paths...)
	return q
}

// Enqueue appends paths to the tail of the queue.
func (q *Queue) Enqueue(paths ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paths = append(q.paths, paths...)
}

// Dequeue removes and returns the head of the queue. The second result is
// false when the queue is empty.
func (q *Queue) Dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.paths) == 0 {
		return "", false
	}
	head := q.paths[0]
	q.paths[0] = ""
	q.paths = q.paths[1:]
	return head, true
}

// IsEmpty reports whether no paths are waiting.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of waiting paths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}

// Package framequeue provides the bounded FIFO of decoded frames shared by a
// decode worker (producer) and the playback scheduler (consumer).
package framequeue

import "sync"

// Frame is one decoded picture converted to BGRA8.
type Frame struct {
	// Pixels holds Width*Height*4 bytes in B, G, R, A order.
	Pixels []byte
	Width  int
	Height int

	// Generation is the restart generation the source unit was submitted
	// under. Consumers drop frames from older generations.
	Generation uint64
}

// Queue is a FIFO of frames guarded by a mutex. The lock is only held for
// the duration of a single call, so neither side ever waits on the other's
// work.
//
// Capacity is advisory: PushBack never rejects. The feeder keeps the queue
// within Cap by counting queued and in-flight units before submitting.
type Queue struct {
	mu     sync.Mutex
	frames []Frame
	head   int
	cap    int
}

// New creates an empty queue with the given capacity.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		frames: make([]Frame, 0, capacity),
		cap:    capacity,
	}
}

// PushBack appends a frame.
func (q *Queue) PushBack(f Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Compact before growing so a steady-state queue reuses its backing
	// array instead of creeping forward.
	if q.head > 0 && len(q.frames) == cap(q.frames) {
		n := copy(q.frames, q.frames[q.head:])
		clear(q.frames[n:])
		q.frames = q.frames[:n]
		q.head = 0
	}
	q.frames = append(q.frames, f)
}

// PopFront removes and returns the oldest frame. It returns false when the
// queue is empty and never blocks beyond the lock.
func (q *Queue) PopFront() (Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.frames) {
		return Frame{}, false
	}
	f := q.frames[q.head]
	q.frames[q.head] = Frame{}
	q.head++
	if q.head == len(q.frames) {
		q.frames = q.frames[:0]
		q.head = 0
	}
	return f, true
}

// Clear discards every queued frame and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.frames) - q.head
	clear(q.frames)
	q.frames = q.frames[:0]
	q.head = 0
	return n
}

// Len returns the number of queued frames.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) - q.head
}

// Cap returns the configured capacity.
func (q *Queue) Cap() int {
	return q.cap
}

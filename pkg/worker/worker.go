// Package worker runs a decoder on its own goroutine. Access units are fed
// through a FIFO channel; decoded pictures are converted to BGRA8 and pushed
// into a framequeue.Queue for the playback scheduler to pick up.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/user/h264play/pkg/colorconv"
	"github.com/user/h264play/pkg/framequeue"
	"github.com/user/h264play/pkg/ports"
)

var (
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("worker: stopped")

	// ErrBackpressure is returned by Submit when the unit channel is full.
	// The feeder never submits more than the queue capacity, so this only
	// happens when a caller ignores Pending.
	ErrBackpressure = errors.New("worker: unit channel full")
)

// Options configures a Worker.
type Options struct {
	// Capacity sizes the unit channel. The channel holds Capacity+1
	// entries so a full feed never fails on the non-blocking send.
	Capacity int

	// ColorMode selects how out-of-range colour values are narrowed.
	ColorMode colorconv.Mode
}

// Stats is a snapshot of what the worker has processed.
type Stats struct {
	Decoded int64 // units that produced a frame
	Empty   int64 // units that produced no picture
	Failed  int64 // units the decoder rejected
}

type unit struct {
	data       []byte
	generation uint64
}

// Worker owns one decoder and the goroutine that drives it.
type Worker struct {
	dec   ports.H264Decoder
	queue *framequeue.Queue
	mode  colorconv.Mode
	log   ports.Logger

	units    chan unit
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	pending atomic.Int64
	decoded atomic.Int64
	empty   atomic.Int64
	failed  atomic.Int64
}

// Start spawns the worker goroutine. The worker takes ownership of dec and
// closes it when it exits.
func Start(dec ports.H264Decoder, q *framequeue.Queue, opts Options, log ports.Logger) *Worker {
	capacity := opts.Capacity
	if capacity < 1 {
		capacity = q.Cap()
	}

	w := &Worker{
		dec:   dec,
		queue: q,
		mode:  opts.ColorMode,
		log:   log.WithComponent("worker"),
		units: make(chan unit, capacity+1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit hands a unit to the worker without blocking. generation is copied
// onto the resulting frame.
func (w *Worker) Submit(data []byte, generation uint64) error {
	select {
	case <-w.quit:
		return ErrStopped
	default:
	}

	w.pending.Add(1)
	select {
	case w.units <- unit{data: data, generation: generation}:
		return nil
	default:
		w.pending.Add(-1)
		return ErrBackpressure
	}
}

// Pending returns the number of submitted units that have not been processed
// yet. A unit's frame is queued before it stops counting as pending.
func (w *Worker) Pending() int {
	return int(w.pending.Load())
}

// Stop asks the worker to exit. Units still waiting in the channel are
// abandoned. Stop does not wait; use Done or Wait for that. It is safe to
// call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
}

// Done is closed once the worker goroutine has closed its decoder and
// exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the worker has exited or ctx is done.
func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Decoded: w.decoded.Load(),
		Empty:   w.empty.Load(),
		Failed:  w.failed.Load(),
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.dec.Close()

	for {
		// Stop wins over queued units.
		select {
		case <-w.quit:
			return
		default:
		}

		select {
		case <-w.quit:
			return
		case u := <-w.units:
			w.process(u)
			w.pending.Add(-1)
		}
	}
}

func (w *Worker) process(u unit) {
	pic, err := w.dec.Decode(u.data)
	if err != nil {
		w.failed.Add(1)
		w.log.Debug("Dropped access unit (%d bytes): %v", len(u.data), err)
		return
	}
	if pic == nil {
		w.empty.Add(1)
		return
	}

	w.queue.PushBack(framequeue.Frame{
		Pixels:     colorconv.ToBGRA8(pic, w.mode),
		Width:      pic.Width,
		Height:     pic.Height,
		Generation: u.generation,
	})
	w.decoded.Add(1)
}

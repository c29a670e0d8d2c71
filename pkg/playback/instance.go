package playback

import (
	"time"

	"github.com/user/h264play/pkg/framequeue"
	"github.com/user/h264play/pkg/ports"
	"github.com/user/h264play/pkg/worker"
)

type instance struct {
	id       InstanceID
	opts     Options
	state    Status
	capacity int

	units      [][]byte
	frameCount int
	nextFrame  int
	feedIndex  int
	elapsed    time.Duration
	generation uint64

	queue  *framequeue.Queue
	worker *worker.Worker

	displayed int
	missed    int
	discarded int
}

// eligible applies the pacing gate for one tick.
func (in *instance) eligible(dt time.Duration) bool {
	if in.opts.Pacing.Mode != RealTime {
		return true
	}
	in.elapsed += dt
	return in.elapsed > in.opts.Pacing.FrameTime
}

// nextFrameData pops the next frame of the current generation, dropping
// frames queued before a restart.
func (in *instance) nextFrameData() (framequeue.Frame, bool) {
	for {
		f, ok := in.queue.PopFront()
		if !ok {
			return framequeue.Frame{}, false
		}
		if f.Generation == in.generation {
			return f, true
		}
		in.discarded++
	}
}

// show writes f into target and advances the frame index.
func (in *instance) show(f framequeue.Frame, target ports.RenderTarget) Update {
	if w, h := target.Size(); w != f.Width || h != f.Height {
		target.Resize(f.Width, f.Height)
	}
	copy(target.Pixels(), f.Pixels)

	u := Update{
		Instance: in.id,
		Target:   in.opts.Target,
		Frame:    in.nextFrame,
		Width:    f.Width,
		Height:   f.Height,
	}

	in.displayed++
	in.elapsed = 0
	in.nextFrame++
	if in.nextFrame >= in.frameCount {
		in.nextFrame = 0
		if !in.opts.Repeat {
			in.state = StatusPaused
		}
	}
	return u
}

// restart rewinds feeding and display. A paused instance also drops its
// queued frames and ignores frames still being decoded.
func (in *instance) restart() (dropped int) {
	in.feedIndex = 0
	in.nextFrame = 0
	if in.state != StatusPaused {
		return 0
	}
	dropped = in.queue.Clear()
	in.generation++
	in.state = StatusActive
	return dropped
}

func (in *instance) info() Info {
	return Info{
		ID:         in.id,
		Video:      in.opts.Video,
		Target:     in.opts.Target,
		Status:     in.state,
		Options:    in.opts,
		FrameCount: in.frameCount,
		NextFrame:  in.nextFrame,
		FeedIndex:  in.feedIndex,
		Queued:     in.queue.Len(),
		Pending:    in.worker.Pending(),
		Generation: in.generation,
		Displayed:  in.displayed,
		Missed:     in.missed,
		Discarded:  in.discarded,
		Worker:     in.worker.Stats(),
	}
}

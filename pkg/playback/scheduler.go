package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/h264play/pkg/framequeue"
	"github.com/user/h264play/pkg/ports"
	"github.com/user/h264play/pkg/worker"
)

// Scheduler drives playback instances. Tick and the control methods may be
// called from different goroutines; RequestRestart never waits for a tick in
// progress.
type Scheduler struct {
	deps Deps
	log  ports.Logger

	mu        sync.Mutex
	instances map[InstanceID]*instance
	order     []InstanceID
	nextID    InstanceID
	removed   []Info
	stopped   []*worker.Worker
	shutdown  bool

	restartMu sync.Mutex
	restarts  []InstanceID
}

// New creates a Scheduler.
func New(deps Deps, log ports.Logger) *Scheduler {
	return &Scheduler{
		deps:      deps,
		log:       log.WithComponent("playback"),
		instances: make(map[InstanceID]*instance),
	}
}

// Start creates an instance in the Loading state. Its decoder is created
// and its worker started right away; feeding begins once the asset is
// ready.
func (s *Scheduler) Start(opts Options) (InstanceID, error) {
	if opts.Pacing.Mode == RealTime && opts.Pacing.FrameTime <= 0 {
		return 0, ErrInvalidPacing
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultFixedStepCapacity
		if opts.Pacing.Mode == RealTime {
			opts.Capacity = DefaultRealTimeCapacity
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return 0, ErrShutdown
	}

	dec, err := s.deps.NewDecoder()
	if err != nil {
		return 0, fmt.Errorf("playback: create decoder: %w", err)
	}

	q := framequeue.New(opts.Capacity)
	w := worker.Start(dec, q, worker.Options{
		Capacity:  opts.Capacity,
		ColorMode: s.deps.ColorMode,
	}, s.log)

	s.nextID++
	in := &instance{
		id:       s.nextID,
		opts:     opts,
		state:    StatusLoading,
		capacity: opts.Capacity,
		queue:    q,
		worker:   w,
	}
	s.instances[in.id] = in
	s.order = append(s.order, in.id)

	s.log.Debug("Instance %d created for %s (%s, capacity %d)", in.id, opts.Video, opts.Pacing.Mode, opts.Capacity)
	return in.id, nil
}

// Tick advances every instance by one host tick of length dt and returns the
// frames written to render targets. dt is only used by real-time pacing.
func (s *Scheduler) Tick(dt time.Duration) []Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updates []Update

	for _, in := range s.snapshot() {
		if in.state == StatusLoading {
			s.checkAsset(in)
		}
	}

	for _, in := range s.snapshot() {
		if in.state != StatusActive {
			continue
		}
		if u, ok := s.consume(in, dt); ok {
			updates = append(updates, u)
		}
	}

	for _, in := range s.snapshot() {
		if in.state == StatusLoading || in.state == StatusPaused || len(in.units) == 0 {
			continue
		}
		s.feed(in)
	}

	for _, id := range s.takeRestarts() {
		in, ok := s.instances[id]
		if !ok {
			continue
		}
		if dropped := in.restart(); dropped > 0 {
			s.log.Debug("Instance %d restarted, %d queued frames dropped", id, dropped)
		}
	}

	return updates
}

func (s *Scheduler) snapshot() []*instance {
	list := make([]*instance, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.instances[id])
	}
	return list
}

func (s *Scheduler) checkAsset(in *instance) {
	switch status := s.deps.Assets.Status(in.opts.Video); status {
	case ports.StatusLoading:
		return
	case ports.StatusReady:
		units, _ := s.deps.Assets.Units(in.opts.Video)
		if len(units) == 0 {
			// An empty stream stays active and never plays.
			s.log.Warn("Video %s has no access units", in.opts.Video)
		}
		in.units = units
		in.frameCount = len(units)
		in.state = StatusActive
		s.log.Info("Video %s is ready: %d access units", in.opts.Video, len(units))
	default:
		s.log.Warn("Video %s could not be loaded (%s)", in.opts.Video, status)
		s.remove(in, "asset "+status.String())
	}
}

func (s *Scheduler) consume(in *instance, dt time.Duration) (Update, bool) {
	if !in.eligible(dt) {
		return Update{}, false
	}

	f, ok := in.nextFrameData()
	if !ok {
		in.missed++
		return Update{}, false
	}

	target, ok := s.deps.Targets.Target(in.opts.Target)
	if !ok {
		s.log.Error("Render target is missing (instance %d, target %d)", in.id, in.opts.Target)
		s.remove(in, "render target missing")
		return Update{}, false
	}

	u := in.show(f, target)
	if in.state == StatusPaused {
		s.log.Info("Instance %d reached the end of %s", in.id, in.opts.Video)
	}
	return u, true
}

func (s *Scheduler) feed(in *instance) {
	for in.queue.Len()+in.worker.Pending() < in.capacity {
		if err := in.worker.Submit(in.units[in.feedIndex], in.generation); err != nil {
			s.log.Error("Decode worker rejected a unit for instance %d: %v", in.id, err)
			s.remove(in, "worker rejected unit")
			return
		}
		in.feedIndex = (in.feedIndex + 1) % len(in.units)
	}
}

func (s *Scheduler) takeRestarts() []InstanceID {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	ids := s.restarts
	s.restarts = nil
	return ids
}

// remove stops the worker and forgets the instance. It does not wait for
// the worker goroutine.
func (s *Scheduler) remove(in *instance, reason string) {
	in.worker.Stop()
	s.stopped = append(s.stopped, in.worker)

	info := in.info()
	info.Reason = reason
	s.removed = append(s.removed, info)

	delete(s.instances, in.id)
	for i, id := range s.order {
		if id == in.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// RequestRestart asks for the instance to start over from its first unit on
// the next tick. It is safe to call from any goroutine.
func (s *Scheduler) RequestRestart(id InstanceID) {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	s.restarts = append(s.restarts, id)
}

// Pause stops frame consumption and feeding for an active instance.
func (s *Scheduler) Pause(id InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.instances[id]
	if !ok {
		return ErrUnknownInstance
	}
	if in.state != StatusActive {
		return fmt.Errorf("pause instance %d (%s): %w", id, in.state, ErrInvalidState)
	}
	in.state = StatusPaused
	return nil
}

// Resume continues a paused instance from where it stopped. Unlike a
// restart it keeps the queued frames.
func (s *Scheduler) Resume(id InstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.instances[id]
	if !ok {
		return ErrUnknownInstance
	}
	if in.state != StatusPaused {
		return fmt.Errorf("resume instance %d (%s): %w", id, in.state, ErrInvalidState)
	}
	in.state = StatusActive
	return nil
}

// Remove tears the instance down. It reports false for unknown ids.
func (s *Scheduler) Remove(id InstanceID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.instances[id]
	if !ok {
		return false
	}
	s.remove(in, "removed")
	return true
}

// Status returns the lifecycle state of an instance.
func (s *Scheduler) Status(id InstanceID) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.instances[id]
	if !ok {
		return 0, false
	}
	return in.state, true
}

// Info returns a snapshot of an instance.
func (s *Scheduler) Info(id InstanceID) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.instances[id]
	if !ok {
		return Info{}, false
	}
	return in.info(), true
}

// Removed returns snapshots of the instances removed so far, taken at
// removal time, in removal order.
func (s *Scheduler) Removed() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Info(nil), s.removed...)
}

// IDs returns the ids of all live instances in creation order.
func (s *Scheduler) IDs() []InstanceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]InstanceID(nil), s.order...)
}

// Len returns the number of live instances.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Shutdown removes every instance and waits until all workers, including
// those of instances removed earlier, have exited or ctx is done. Start
// fails afterwards.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	for _, in := range s.snapshot() {
		s.remove(in, "shutdown")
	}
	s.mu.Unlock()

	for _, w := range s.allWorkers() {
		if err := w.Wait(ctx); err != nil {
			return fmt.Errorf("playback: waiting for decode workers: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) allWorkers() []*worker.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*worker.Worker(nil), s.stopped...)
}

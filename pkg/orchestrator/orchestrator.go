// Package orchestrator hosts playback: it loads the videos, creates one
// render target and playback instance per video, drives the scheduler at the
// configured tick rate and hands displayed frames to a frame sink.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/h264play/pkg/bitstream"
	"github.com/user/h264play/pkg/colorconv"
	"github.com/user/h264play/pkg/playback"
	"github.com/user/h264play/pkg/ports"
)

// Why a run ended.
const (
	StopFinished    = "finished"
	StopRemoved     = "removed"
	StopFrameLimit  = "frame limit"
	StopDuration    = "duration"
	StopInterrupted = "interrupted"
)

// ErrNoVideos is returned by Run when the config names no videos.
var ErrNoVideos = errors.New("orchestrator: no videos to play")

// AssetLoader is an asset provider that can be asked to load a video.
type AssetLoader interface {
	ports.AssetProvider
	Load(ref ports.VideoRef)
	Info(ref ports.VideoRef) (bitstream.StreamInfo, bool)
}

// TargetStore is a set of render targets the orchestrator can add to.
type TargetStore interface {
	ports.RenderTargets
	Create(width, height int) ports.TargetID
	Remove(id ports.TargetID) bool
}

// Config contains all configuration for a run.
type Config struct {
	Videos []string

	Pacing playback.PacingMode
	// FPS is the tick rate in fixed-step mode and the default frame rate in
	// real-time mode.
	FPS float64
	// FrameTime overrides 1/FPS in real-time mode.
	FrameTime time.Duration
	// TickRate is the host tick rate in real-time mode.
	TickRate float64

	Repeat bool
	// Restarts replays a finished non-repeating video this many times.
	Restarts int
	// Buffer is the per-instance queue capacity; zero selects the mode
	// default.
	Buffer int

	ColorMode colorconv.Mode

	// MaxFrames stops the run after this many displayed frames in total.
	MaxFrames int
	// Duration stops the run after this much wall time.
	Duration time.Duration

	// SnapshotEvery sends every Nth displayed frame of a stream to the sink.
	SnapshotEvery int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Pacing:        playback.FixedStep,
		FPS:           30,
		TickRate:      120,
		SnapshotEvery: 1,
	}
}

// TickInterval returns the wall time between ticks.
func (c Config) TickInterval() time.Duration {
	rate := c.FPS
	if c.Pacing == playback.RealTime {
		rate = c.TickRate
	}
	if rate <= 0 {
		rate = 30
	}
	return time.Duration(float64(time.Second) / rate)
}

// PlaybackPacing returns the per-instance pacing for this config.
func (c Config) PlaybackPacing() playback.Pacing {
	p := playback.Pacing{Mode: c.Pacing}
	if c.Pacing == playback.RealTime {
		p.FrameTime = c.FrameTime
		if p.FrameTime <= 0 && c.FPS > 0 {
			p.FrameTime = time.Duration(float64(time.Second) / c.FPS)
		}
	}
	return p
}

// Orchestrator coordinates the assets, render targets, scheduler and sink.
type Orchestrator struct {
	assets     AssetLoader
	targets    TargetStore
	newDecoder ports.DecoderFactory
	sink       ports.FrameSink
	logger     ports.Logger
}

// New creates a new Orchestrator.
func New(
	assets AssetLoader,
	targets TargetStore,
	newDecoder ports.DecoderFactory,
	sink ports.FrameSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		assets:     assets,
		targets:    targets,
		newDecoder: newDecoder,
		sink:       sink,
		logger:     logger.WithComponent("orchestrator"),
	}
}

type stream struct {
	video     string
	target    ports.TargetID
	displayed int
	restarts  int
}

type snapshot struct {
	stream string
	index  int
	img    image.Image
}

// Run plays every configured video until all of them have finished or been
// removed, a limit is reached, or ctx is cancelled. Cancellation is not an
// error; the result reports it as StopInterrupted.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	if len(config.Videos) == 0 {
		return RunResult{}, ErrNoVideos
	}
	if config.SnapshotEvery < 1 {
		config.SnapshotEvery = 1
	}

	sched := playback.New(playback.Deps{
		Assets:     o.assets,
		Targets:    o.targets,
		NewDecoder: o.newDecoder,
		ColorMode:  config.ColorMode,
	}, o.logger)

	streams := make(map[playback.InstanceID]*stream, len(config.Videos))
	for _, video := range config.Videos {
		ref := ports.VideoRef(video)
		o.assets.Load(ref)
		target := o.targets.Create(0, 0)

		id, err := sched.Start(playback.Options{
			Video:    ref,
			Target:   target,
			Repeat:   config.Repeat,
			Pacing:   config.PlaybackPacing(),
			Capacity: config.Buffer,
		})
		if err != nil {
			o.targets.Remove(target)
			o.shutdown(sched)
			for _, s := range streams {
				o.targets.Remove(s.target)
			}
			return RunResult{}, fmt.Errorf("start %s: %w", video, err)
		}
		streams[id] = &stream{video: video, target: target}
	}

	o.logger.Info("Playing %d streams (%s pacing, %.1f ticks/s)",
		len(streams), config.Pacing, float64(time.Second)/float64(config.TickInterval()))

	loop := &tickLoop{
		o:       o,
		sched:   sched,
		config:  config,
		streams: streams,
		frames:  make(chan snapshot, 16),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(loop.frames)
		return loop.run(gctx)
	})
	g.Go(func() error {
		return o.writeSnapshots(loop.frames)
	})
	err := g.Wait()

	o.shutdown(sched)
	for _, s := range streams {
		o.targets.Remove(s.target)
	}

	if err != nil && !(ctx.Err() != nil && errors.Is(err, ctx.Err())) {
		return RunResult{}, err
	}
	if ctx.Err() != nil {
		loop.reason = StopInterrupted
	}

	result := o.buildResult(config, loop, sched)
	o.logger.Info("Playback stopped (%s) after %d frames", result.StopReason, result.TotalFrames)
	return result, nil
}

func (o *Orchestrator) shutdown(sched *playback.Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sched.Shutdown(ctx); err != nil {
		o.logger.Warn("Decode workers did not stop in time: %s", err)
	}
}

// writeSnapshots runs on its own goroutine so image encoding never delays a
// tick.
func (o *Orchestrator) writeSnapshots(frames <-chan snapshot) error {
	for s := range frames {
		if err := o.sink.SaveFrame(s.stream, s.index, s.img); err != nil {
			o.logger.Error("Failed to save snapshot: %s", err)
			return fmt.Errorf("save snapshot %d of %s: %w", s.index, s.stream, err)
		}
	}
	return nil
}

func (o *Orchestrator) buildResult(config Config, loop *tickLoop, sched *playback.Scheduler) RunResult {
	result := RunResult{
		Mode:        config.Pacing.String(),
		FPS:         config.FPS,
		TickRate:    float64(time.Second) / float64(config.TickInterval()),
		Ticks:       loop.ticks,
		Elapsed:     loop.elapsed,
		TotalFrames: loop.total,
		Snapshots:   loop.snapshots,
		StopReason:  loop.reason,
		Interrupted: loop.reason == StopInterrupted,
	}

	for _, info := range sched.Removed() {
		s, ok := loop.streams[info.ID]
		if !ok {
			continue
		}
		sr := StreamResult{
			Video:     s.video,
			Displayed: s.displayed,
			Restarts:  s.restarts,
			Missed:    info.Missed,
			Discarded: info.Discarded,
			Decoded:   info.Worker.Decoded,
			Empty:     info.Worker.Empty,
			Failed:    info.Worker.Failed,
			Outcome:   info.Reason,
			Units:     info.FrameCount,
		}
		if si, ok := o.assets.Info(info.Video); ok {
			sr.Units = si.Units
			sr.Bytes = int64(si.Bytes)
			sr.Width = si.Width
			sr.Height = si.Height
			sr.Profile = si.Profile
			sr.Level = si.Level
		}
		result.Streams = append(result.Streams, sr)
	}
	return result
}

// tickLoop is the state of the ticking goroutine.
type tickLoop struct {
	o       *Orchestrator
	sched   *playback.Scheduler
	config  Config
	streams map[playback.InstanceID]*stream
	frames  chan snapshot

	ticks     int
	total     int
	snapshots int
	elapsed   time.Duration
	reason    string
}

func (l *tickLoop) run(ctx context.Context) error {
	ticker := time.NewTicker(l.config.TickInterval())
	defer ticker.Stop()

	start := time.Now()
	last := start

	for {
		var now time.Time
		select {
		case <-ctx.Done():
			l.elapsed = time.Since(start)
			return ctx.Err()
		case now = <-ticker.C:
		}

		dt := now.Sub(last)
		last = now
		l.ticks++

		for _, u := range l.sched.Tick(dt) {
			if err := l.display(ctx, u); err != nil {
				l.elapsed = time.Since(start)
				return err
			}
		}

		l.elapsed = now.Sub(start)
		if reason, done := l.finished(); done {
			l.reason = reason
			return nil
		}
	}
}

func (l *tickLoop) display(ctx context.Context, u playback.Update) error {
	s, ok := l.streams[u.Instance]
	if !ok {
		return nil
	}
	index := s.displayed
	s.displayed++
	l.total++

	if !l.o.sink.Enabled() || index%l.config.SnapshotEvery != 0 {
		return nil
	}
	target, ok := l.o.targets.Target(u.Target)
	if !ok {
		return nil
	}
	w, h := target.Size()
	img := colorconv.BGRAToRGBA(target.Pixels(), w, h)

	select {
	case l.frames <- snapshot{stream: s.video, index: index, img: img}:
		l.snapshots++
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finished restarts streams that reached their end and reports whether the
// run is over.
func (l *tickLoop) finished() (string, bool) {
	if l.config.MaxFrames > 0 && l.total >= l.config.MaxFrames {
		return StopFrameLimit, true
	}
	if l.config.Duration > 0 && l.elapsed >= l.config.Duration {
		return StopDuration, true
	}

	ids := l.sched.IDs()
	if len(ids) == 0 {
		return StopRemoved, true
	}

	playing := 0
	for _, id := range ids {
		info, ok := l.sched.Info(id)
		if !ok {
			continue
		}
		// An empty video stays active but never shows a frame.
		if info.Status == playback.StatusActive && info.FrameCount == 0 {
			continue
		}
		if info.Status != playback.StatusPaused {
			playing++
			continue
		}
		s := l.streams[id]
		if s.restarts < l.config.Restarts {
			s.restarts++
			l.o.logger.Info("Restarting %s (%d/%d)", s.video, s.restarts, l.config.Restarts)
			l.sched.RequestRestart(id)
			playing++
		}
	}
	if playing == 0 {
		return StopFinished, true
	}
	return "", false
}

// RunResult contains the results of a playback run for summary generation.
type RunResult struct {
	Mode     string
	FPS      float64
	TickRate float64

	Ticks       int
	Elapsed     time.Duration
	TotalFrames int
	Snapshots   int

	StopReason  string
	Interrupted bool

	Streams []StreamResult
}

// StreamResult describes one video of a run.
type StreamResult struct {
	Video string

	// Stream properties. Dimensions, profile and level come from the
	// first SPS.
	Bytes   int64
	Units   int
	Width   int
	Height  int
	Profile int
	Level   int

	Displayed int
	Restarts  int
	Missed    int
	Discarded int

	// Decode worker counters.
	Decoded int64
	Empty   int64
	Failed  int64

	// Outcome is why the instance was removed ("shutdown" for streams that
	// were still running at the end).
	Outcome string
}

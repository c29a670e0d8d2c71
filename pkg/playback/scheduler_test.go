package playback

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/h264play/pkg/mocks"
	"github.com/user/h264play/pkg/ports"
)

const (
	testVideo  ports.VideoRef = "clip.h264"
	testTarget ports.TargetID = 1
)

type fixture struct {
	sched   *Scheduler
	assets  *mocks.AssetProvider
	targets *mocks.RenderTargets
	target  *mocks.RenderTarget
	dec     *mocks.Decoder
	log     *mocks.Logger
}

func newFixture(t *testing.T, units int) *fixture {
	t.Helper()
	f := &fixture{
		assets:  mocks.NewAssetProvider(),
		targets: mocks.NewRenderTargets(),
		dec:     &mocks.Decoder{},
		log:     mocks.NewLogger(),
	}
	f.assets.SetReady(testVideo, mocks.Units(units))
	f.target = f.targets.Add(testTarget, 12, 12)
	f.sched = New(Deps{
		Assets:     f.assets,
		Targets:    f.targets,
		NewDecoder: func() (ports.H264Decoder, error) { return f.dec, nil },
	}, f.log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		f.sched.Shutdown(ctx)
	})
	return f
}

func (f *fixture) start(t *testing.T, opts Options) InstanceID {
	t.Helper()
	if opts.Video == "" {
		opts.Video = testVideo
	}
	if opts.Target == 0 {
		opts.Target = testTarget
	}
	id, err := f.sched.Start(opts)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return id
}

func (f *fixture) info(t *testing.T, id InstanceID) Info {
	t.Helper()
	info, ok := f.sched.Info(id)
	if !ok {
		t.Fatalf("instance %d is gone", id)
	}
	return info
}

// waitSettled waits until the worker has processed every submitted unit and
// at least n frames are queued.
func (f *fixture) waitSettled(t *testing.T, id InstanceID, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		info := f.info(t, id)
		if info.Pending == 0 && info.Queued >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out: queued=%d pending=%d, want %d queued", info.Queued, info.Pending, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestScheduler_LoopWrap(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{Repeat: true})

	if updates := f.sched.Tick(0); len(updates) != 0 {
		t.Fatalf("expected no frames on the activation tick, got %d", len(updates))
	}
	f.waitSettled(t, id, DefaultFixedStepCapacity)

	wantFrame := []int{0, 1, 2, 0, 1, 2, 0}
	for i, want := range wantFrame {
		updates := f.sched.Tick(0)
		if len(updates) != 1 {
			t.Fatalf("tick %d: expected 1 update, got %d", i, len(updates))
		}
		u := updates[0]
		if u.Frame != want {
			t.Errorf("tick %d: expected frame %d, got %d", i, want, u.Frame)
		}
		// Unit i%3 decodes to luma i%3.
		if f.target.Pix[0] != byte(want) {
			t.Errorf("tick %d: target shows luma %d, want %d", i, f.target.Pix[0], want)
		}
		f.waitSettled(t, id, DefaultFixedStepCapacity)
	}

	if s, _ := f.sched.Status(id); s != StatusActive {
		t.Errorf("expected repeating instance to stay active, got %s", s)
	}
}

func TestScheduler_NonRepeatTermination(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{})

	f.sched.Tick(0)
	f.waitSettled(t, id, DefaultFixedStepCapacity)

	shown := 0
	for i := 0; i < 3; i++ {
		shown += len(f.sched.Tick(0))
		f.waitSettled(t, id, 1)
	}
	if shown != 3 {
		t.Fatalf("expected 3 frames, got %d", shown)
	}

	if s, _ := f.sched.Status(id); s != StatusPaused {
		t.Fatalf("expected paused after the last frame, got %s", s)
	}
	info := f.info(t, id)
	if info.NextFrame != 0 {
		t.Errorf("expected next frame to wrap to 0, got %d", info.NextFrame)
	}

	decodes := len(f.dec.Decoded())
	for i := 0; i < 5; i++ {
		if updates := f.sched.Tick(0); len(updates) != 0 {
			t.Fatalf("paused instance produced %d updates", len(updates))
		}
	}
	time.Sleep(10 * time.Millisecond)
	if got := len(f.dec.Decoded()); got != decodes {
		t.Errorf("paused instance kept feeding: %d -> %d decodes", decodes, got)
	}
	if !f.log.Contains(ports.LevelInfo, "reached the end") {
		t.Error("expected end-of-video to be logged")
	}
}

func TestScheduler_Backpressure(t *testing.T) {
	f := newFixture(t, 5)
	release := make(chan struct{})
	f.dec.DecodeFunc = func(unit []byte) (*ports.Picture, error) {
		<-release
		return mocks.GreyPicture(2, 2, unit[len(unit)-1]), nil
	}
	id := f.start(t, Options{Repeat: true, Capacity: 4})

	// With decoding stalled, repeated ticks must not submit beyond the
	// capacity.
	for i := 0; i < 50; i++ {
		f.sched.Tick(0)
		info := f.info(t, id)
		if info.Queued+info.Pending > 4 {
			t.Fatalf("tick %d: %d queued + %d pending exceeds capacity", i, info.Queued, info.Pending)
		}
	}
	if info := f.info(t, id); info.Pending != 4 {
		t.Fatalf("expected 4 in-flight units, got %d", info.Pending)
	}

	close(release)
	f.waitSettled(t, id, 4)
	if info := f.info(t, id); info.Queued != 4 {
		t.Errorf("expected a full queue of 4, got %d", info.Queued)
	}

	for i := 0; i < 20; i++ {
		f.sched.Tick(0)
		if info := f.info(t, id); info.Queued > 4 {
			t.Fatalf("queue length %d exceeds capacity", info.Queued)
		}
	}
}

func TestScheduler_TickDoesNotBlockOnDecode(t *testing.T) {
	f := newFixture(t, 3)
	release := make(chan struct{})
	defer close(release)
	f.dec.DecodeFunc = func(unit []byte) (*ports.Picture, error) {
		<-release
		return nil, nil
	}
	id := f.start(t, Options{Repeat: true})

	begin := time.Now()
	for i := 0; i < 100; i++ {
		if updates := f.sched.Tick(0); len(updates) != 0 {
			t.Fatalf("unexpected update on tick %d", i)
		}
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Errorf("ticks took %v while decoding was stalled", elapsed)
	}

	if info := f.info(t, id); info.Missed != 100 {
		t.Errorf("expected 100 missed frames, got %d", info.Missed)
	}
}

func TestScheduler_RealTimePacing(t *testing.T) {
	f := newFixture(t, 8)
	id := f.start(t, Options{
		Repeat: true,
		Pacing: Pacing{Mode: RealTime, FrameTime: time.Second / 30},
	})

	if info := f.info(t, id); info.Options.Capacity != DefaultRealTimeCapacity {
		t.Fatalf("expected default real-time capacity, got %d", info.Options.Capacity)
	}

	f.sched.Tick(0)
	f.waitSettled(t, id, DefaultRealTimeCapacity)

	var shownAt []int
	for i := 1; i <= 10; i++ {
		if len(f.sched.Tick(10*time.Millisecond)) > 0 {
			shownAt = append(shownAt, i)
		}
	}

	if len(shownAt) != 2 || shownAt[0] != 4 || shownAt[1] != 8 {
		t.Errorf("expected frames on ticks 4 and 8, got %v", shownAt)
	}
}

func TestScheduler_RealTimeKeepsAccruingWhenQueueIsEmpty(t *testing.T) {
	f := newFixture(t, 3)
	release := make(chan struct{})
	f.dec.DecodeFunc = func(unit []byte) (*ports.Picture, error) {
		<-release
		return mocks.GreyPicture(2, 2, 0), nil
	}
	id := f.start(t, Options{
		Repeat: true,
		Pacing: Pacing{Mode: RealTime, FrameTime: 30 * time.Millisecond},
	})

	for i := 0; i < 5; i++ {
		f.sched.Tick(10 * time.Millisecond)
	}
	close(release)
	f.waitSettled(t, id, 1)

	// 50ms have accrued, so the very next tick is eligible.
	if updates := f.sched.Tick(time.Millisecond); len(updates) != 1 {
		t.Fatalf("expected the overdue frame to be shown, got %d updates", len(updates))
	}
	if info := f.info(t, id); info.Missed != 2 {
		t.Errorf("expected 2 missed frames, got %d", info.Missed)
	}
}

func TestScheduler_RestartWhilePaused(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{})

	f.sched.Tick(0)
	f.waitSettled(t, id, DefaultFixedStepCapacity)
	for i := 0; i < 3; i++ {
		f.sched.Tick(0)
		f.waitSettled(t, id, 1)
	}
	if s, _ := f.sched.Status(id); s != StatusPaused {
		t.Fatalf("expected paused, got %s", s)
	}
	if info := f.info(t, id); info.Queued == 0 {
		t.Fatal("expected leftover frames in the queue while paused")
	}

	f.sched.RequestRestart(id)
	f.sched.Tick(0)

	info := f.info(t, id)
	if info.Status != StatusActive {
		t.Fatalf("expected active after restart, got %s", info.Status)
	}
	if info.NextFrame != 0 || info.FeedIndex != 0 {
		t.Errorf("expected rewind to unit 0, got next=%d feed=%d", info.NextFrame, info.FeedIndex)
	}
	if info.Queued != 0 {
		t.Fatalf("expected restart to clear the queue, %d frames left", info.Queued)
	}
	if info.Generation != 1 {
		t.Errorf("expected generation 1, got %d", info.Generation)
	}

	f.sched.Tick(0)
	f.waitSettled(t, id, 1)
	updates := f.sched.Tick(0)
	if len(updates) != 1 || updates[0].Frame != 0 {
		t.Fatalf("expected frame 0 after restart, got %+v", updates)
	}
	if f.target.Pix[0] != 0 {
		t.Errorf("expected the first unit's picture, got luma %d", f.target.Pix[0])
	}
}

func TestScheduler_RestartDiscardsInFlightFrames(t *testing.T) {
	f := newFixture(t, 2)
	var block atomic.Bool
	gate := make(chan struct{})
	f.dec.DecodeFunc = func(unit []byte) (*ports.Picture, error) {
		if block.Load() {
			<-gate
		}
		return mocks.GreyPicture(2, 2, unit[len(unit)-1]), nil
	}
	id := f.start(t, Options{Capacity: 2})

	f.sched.Tick(0)
	f.waitSettled(t, id, 2)

	block.Store(true)
	f.sched.Tick(0) // shows frame 0, refill blocks in the decoder
	f.sched.Tick(0) // shows frame 1, pauses
	if info := f.info(t, id); info.Status != StatusPaused || info.Pending != 1 {
		t.Fatalf("expected paused with one unit in flight, got %s/%d", info.Status, info.Pending)
	}

	f.sched.RequestRestart(id)
	f.sched.Tick(0)

	block.Store(false)
	close(gate)
	f.waitSettled(t, id, 1)

	if updates := f.sched.Tick(0); len(updates) != 0 {
		t.Fatalf("stale frame was displayed: %+v", updates)
	}
	if info := f.info(t, id); info.Discarded != 1 {
		t.Errorf("expected 1 discarded frame, got %d", info.Discarded)
	}
}

func TestScheduler_RestartWhileActiveRewinds(t *testing.T) {
	f := newFixture(t, 4)
	id := f.start(t, Options{Repeat: true})

	f.sched.Tick(0)
	f.waitSettled(t, id, DefaultFixedStepCapacity)
	f.sched.Tick(0)
	f.sched.Tick(0)

	f.sched.RequestRestart(id)
	f.sched.Tick(0)

	info := f.info(t, id)
	if info.NextFrame != 0 || info.FeedIndex != 0 || info.Generation != 0 {
		t.Errorf("expected rewind without a new generation, got next=%d feed=%d gen=%d",
			info.NextFrame, info.FeedIndex, info.Generation)
	}
	if info.Status != StatusActive {
		t.Errorf("expected active, got %s", info.Status)
	}
}

func TestScheduler_MissingTarget(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{Target: 42})

	f.sched.Tick(0)
	f.waitSettled(t, id, 1)
	f.sched.Tick(0)

	if _, ok := f.sched.Status(id); ok {
		t.Fatal("expected the instance to be removed")
	}
	if !f.log.Contains(ports.LevelError, "Render target is missing") {
		t.Error("expected an error log for the missing target")
	}
	removed := f.sched.Removed()
	if len(removed) != 1 || removed[0].Reason != "render target missing" {
		t.Errorf("unexpected removal record %+v", removed)
	}
}

func TestScheduler_ResizesTarget(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{Repeat: true})

	f.sched.Tick(0)
	f.waitSettled(t, id, 2)
	f.sched.Tick(0)
	f.sched.Tick(0)

	if w, h := f.target.Size(); w != 2 || h != 2 {
		t.Errorf("expected target resized to 2x2, got %dx%d", w, h)
	}
	if f.target.ResizeCalls != 1 {
		t.Errorf("expected a single resize, got %d", f.target.ResizeCalls)
	}
}

func TestScheduler_AssetStatus(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(a *mocks.AssetProvider)
		want    Status
		removed bool
	}{
		{"loading", func(a *mocks.AssetProvider) { a.SetLoading(testVideo) }, StatusLoading, false},
		{"ready", func(a *mocks.AssetProvider) { a.SetReady(testVideo, mocks.Units(2)) }, StatusActive, false},
		{"failed", func(a *mocks.AssetProvider) { a.SetFailed(testVideo) }, 0, true},
		{"empty", func(a *mocks.AssetProvider) { a.SetReady(testVideo, nil) }, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			tt.setup(f.assets)
			id := f.start(t, Options{})

			f.sched.Tick(0)

			s, ok := f.sched.Status(id)
			if ok == tt.removed {
				t.Fatalf("expected removed=%v, got present=%v", tt.removed, ok)
			}
			if ok && s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

func TestScheduler_EmptyAssetStaysActive(t *testing.T) {
	f := newFixture(t, 0)
	id := f.start(t, Options{})

	for i := 0; i < 10; i++ {
		if updates := f.sched.Tick(0); len(updates) != 0 {
			t.Fatalf("tick %d showed a frame: %+v", i, updates)
		}
	}

	info := f.info(t, id)
	if info.Status != StatusActive {
		t.Errorf("expected active, got %s", info.Status)
	}
	if info.FrameCount != 0 || info.Displayed != 0 {
		t.Errorf("expected nothing to play, got frames=%d displayed=%d", info.FrameCount, info.Displayed)
	}
	if info.Pending != 0 || info.Queued != 0 || len(f.dec.Decoded()) != 0 {
		t.Errorf("expected no decode work, got %+v", info)
	}
	if len(f.sched.Removed()) != 0 {
		t.Errorf("expected no removals, got %+v", f.sched.Removed())
	}
	if !f.log.Contains(ports.LevelWarn, "has no access units") {
		t.Error("expected a warning for the empty video")
	}
}

func TestScheduler_UnknownVideoIsRemoved(t *testing.T) {
	f := newFixture(t, 1)
	id := f.start(t, Options{Video: "missing.h264"})

	f.sched.Tick(0)

	if f.sched.Len() != 0 {
		t.Errorf("expected instance %d to be removed", id)
	}
	if !f.log.Contains(ports.LevelWarn, "could not be loaded") {
		t.Error("expected a warning for the missing video")
	}
}

func TestScheduler_LoadingDoesNotFeed(t *testing.T) {
	f := newFixture(t, 1)
	f.assets.SetLoading(testVideo)
	id := f.start(t, Options{})

	for i := 0; i < 5; i++ {
		f.sched.Tick(0)
	}
	if info := f.info(t, id); info.Pending != 0 || info.Queued != 0 {
		t.Errorf("loading instance was fed: %+v", info)
	}

	f.assets.SetReady(testVideo, mocks.Units(3))
	f.sched.Tick(0)
	if s, _ := f.sched.Status(id); s != StatusActive {
		t.Errorf("expected active once the asset is ready, got %s", s)
	}
}

func TestScheduler_StartValidation(t *testing.T) {
	f := newFixture(t, 1)

	if _, err := f.sched.Start(Options{Video: testVideo, Pacing: Pacing{Mode: RealTime}}); !errors.Is(err, ErrInvalidPacing) {
		t.Errorf("expected ErrInvalidPacing, got %v", err)
	}

	id := f.start(t, Options{})
	if info := f.info(t, id); info.Options.Capacity != DefaultFixedStepCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultFixedStepCapacity, info.Options.Capacity)
	}

	errNoCodec := errors.New("no codec")
	failing := New(Deps{
		Assets:     f.assets,
		Targets:    f.targets,
		NewDecoder: func() (ports.H264Decoder, error) { return nil, errNoCodec },
	}, f.log)
	if _, err := failing.Start(Options{Video: testVideo}); !errors.Is(err, errNoCodec) {
		t.Errorf("expected decoder factory error, got %v", err)
	}
}

func TestScheduler_PauseResume(t *testing.T) {
	f := newFixture(t, 3)
	id := f.start(t, Options{Repeat: true})

	if err := f.sched.Pause(id); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState while loading, got %v", err)
	}

	f.sched.Tick(0)
	f.waitSettled(t, id, 1)

	if err := f.sched.Pause(id); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if updates := f.sched.Tick(0); len(updates) != 0 {
		t.Error("paused instance produced a frame")
	}
	if err := f.sched.Resume(id); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if updates := f.sched.Tick(0); len(updates) != 1 {
		t.Error("resumed instance did not produce a frame")
	}

	if err := f.sched.Pause(999); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("expected ErrUnknownInstance, got %v", err)
	}
}

func TestScheduler_RemoveAndShutdown(t *testing.T) {
	assets := mocks.NewAssetProvider()
	assets.SetReady(testVideo, mocks.Units(3))
	var decoders []*mocks.Decoder
	sched := New(Deps{
		Assets:  assets,
		Targets: mocks.NewRenderTargets(),
		NewDecoder: func() (ports.H264Decoder, error) {
			d := &mocks.Decoder{}
			decoders = append(decoders, d)
			return d, nil
		},
	}, mocks.NewLogger())

	a, _ := sched.Start(Options{Video: testVideo})
	b, _ := sched.Start(Options{Video: testVideo})
	if ids := sched.IDs(); len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("unexpected ids %v", ids)
	}

	if !sched.Remove(a) {
		t.Fatal("Remove returned false for a live instance")
	}
	if sched.Remove(a) {
		t.Error("Remove returned true twice")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sched.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if sched.Len() != 0 {
		t.Errorf("expected no instances after shutdown, got %d", sched.Len())
	}
	for i, d := range decoders {
		if d.Closed() != 1 {
			t.Errorf("decoder %d closed %d times", i, d.Closed())
		}
	}
	if _, err := sched.Start(Options{Video: testVideo}); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
}

func TestParsePacingMode(t *testing.T) {
	if m, ok := ParsePacingMode("realtime"); !ok || m != RealTime {
		t.Errorf("ParsePacingMode(realtime) = %v, %v", m, ok)
	}
	if _, ok := ParsePacingMode("vsync"); ok {
		t.Error("expected unknown mode to be rejected")
	}
}

package orchestrator

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/h264play/pkg/adapters/assetstore"
	"github.com/user/h264play/pkg/adapters/surface"
	"github.com/user/h264play/pkg/mocks"
	"github.com/user/h264play/pkg/playback"
	"github.com/user/h264play/pkg/ports"
)

// SPS (320x240), PPS, IDR slice, P slice.
var testStream = []byte{
	0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0xc0, 0x1e, 0xda, 0x05, 0x07, 0xe4,
	0x00, 0x00, 0x00, 0x01, 0x68, 0xce, 0x38, 0x80,
	0x00, 0x00, 0x01, 0x65, 0x88, 0x84,
	0x00, 0x00, 0x01, 0x41, 0x9a, 0x02,
}

type fixture struct {
	fs      *mocks.FileSystem
	targets *surface.Store
	sink    *mocks.FrameSink
	log     *mocks.Logger
	orch    *Orchestrator
}

func newFixture(t *testing.T, sinkEnabled bool, videos ...string) *fixture {
	t.Helper()
	f := &fixture{
		fs:      mocks.NewFileSystem(),
		targets: surface.NewStore(),
		sink:    mocks.NewFrameSink(sinkEnabled),
		log:     mocks.NewLogger(),
	}
	for _, v := range videos {
		f.fs.WriteFile(v, testStream)
	}
	assets := assetstore.New(f.fs, f.log)
	newDecoder := func() (ports.H264Decoder, error) {
		return &mocks.Decoder{}, nil
	}
	f.orch = New(assets, f.targets, newDecoder, f.sink, f.log)
	return f
}

func fastConfig(videos ...string) Config {
	cfg := DefaultConfig()
	cfg.Videos = videos
	cfg.FPS = 1000
	return cfg
}

func run(t *testing.T, f *fixture, cfg Config) RunResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := f.orch.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Interrupted {
		t.Fatalf("run did not finish in time: %+v", result)
	}
	return result
}

func TestRun_PlaysToEnd(t *testing.T) {
	f := newFixture(t, true, "a.h264", "b.h264")
	cfg := fastConfig("a.h264", "b.h264")
	cfg.SnapshotEvery = 2

	result := run(t, f, cfg)

	if result.StopReason != StopFinished {
		t.Errorf("expected %q, got %q", StopFinished, result.StopReason)
	}
	if len(result.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(result.Streams))
	}
	for _, s := range result.Streams {
		if s.Displayed != 4 {
			t.Errorf("%s: expected 4 displayed frames, got %d", s.Video, s.Displayed)
		}
		if s.Outcome != "shutdown" {
			t.Errorf("%s: expected outcome shutdown, got %q", s.Video, s.Outcome)
		}
		if s.Width != 320 || s.Height != 240 || s.Units != 4 {
			t.Errorf("%s: unexpected stream info %+v", s.Video, s)
		}
	}
	if result.TotalFrames != 8 {
		t.Errorf("expected 8 frames in total, got %d", result.TotalFrames)
	}

	saved := f.sink.Saved()
	if len(saved) != 4 || result.Snapshots != 4 {
		t.Fatalf("expected 4 snapshots, got %d (result %d)", len(saved), result.Snapshots)
	}
	for _, s := range saved {
		if s.Index%2 != 0 {
			t.Errorf("unexpected snapshot index %d", s.Index)
		}
		if s.Image.Bounds() != image.Rect(0, 0, 2, 2) {
			t.Errorf("unexpected snapshot bounds %v", s.Image.Bounds())
		}
	}

	if f.targets.Len() != 0 {
		t.Errorf("expected render targets to be removed, %d left", f.targets.Len())
	}
}

func TestRun_Restarts(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	cfg := fastConfig("a.h264")
	cfg.Restarts = 2

	result := run(t, f, cfg)

	s := result.Streams[0]
	if s.Restarts != 2 {
		t.Errorf("expected 2 restarts, got %d", s.Restarts)
	}
	if s.Displayed != 12 {
		t.Errorf("expected 12 displayed frames, got %d", s.Displayed)
	}
	if !f.log.Contains(ports.LevelInfo, "Restarting a.h264 (2/2)") {
		t.Error("expected restart to be logged")
	}
	if len(f.sink.Saved()) != 0 {
		t.Error("expected no snapshots with a disabled sink")
	}
}

func TestRun_MissingVideo(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	result := run(t, f, fastConfig("a.h264", "missing.h264"))

	if result.StopReason != StopFinished {
		t.Errorf("expected %q, got %q", StopFinished, result.StopReason)
	}
	var missing *StreamResult
	for i := range result.Streams {
		if result.Streams[i].Video == "missing.h264" {
			missing = &result.Streams[i]
		}
	}
	if missing == nil {
		t.Fatal("expected a result for the missing video")
	}
	if missing.Outcome != "asset not-found" || missing.Displayed != 0 {
		t.Errorf("unexpected result %+v", *missing)
	}
}

func TestRun_EmptyVideo(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	f.fs.WriteFile("empty.h264", nil)

	result := run(t, f, fastConfig("a.h264", "empty.h264"))

	if result.StopReason != StopFinished {
		t.Errorf("expected %q, got %q", StopFinished, result.StopReason)
	}
	for _, s := range result.Streams {
		if s.Video != "empty.h264" {
			continue
		}
		if s.Units != 0 || s.Displayed != 0 {
			t.Errorf("expected nothing to play, got %+v", s)
		}
		if s.Outcome != "shutdown" {
			t.Errorf("expected the empty stream to stay until shutdown, got %q", s.Outcome)
		}
		return
	}
	t.Fatal("expected a result for the empty video")
}

func TestRun_AllRemoved(t *testing.T) {
	f := newFixture(t, false)
	result := run(t, f, fastConfig("missing.h264"))

	if result.StopReason != StopRemoved {
		t.Errorf("expected %q, got %q", StopRemoved, result.StopReason)
	}
}

func TestRun_FrameLimit(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	cfg := fastConfig("a.h264")
	cfg.Repeat = true
	cfg.MaxFrames = 10

	result := run(t, f, cfg)

	if result.StopReason != StopFrameLimit {
		t.Errorf("expected %q, got %q", StopFrameLimit, result.StopReason)
	}
	if result.TotalFrames != 10 {
		t.Errorf("expected 10 frames, got %d", result.TotalFrames)
	}
}

func TestRun_Duration(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	cfg := fastConfig("a.h264")
	cfg.Repeat = true
	cfg.Duration = 30 * time.Millisecond

	result := run(t, f, cfg)

	if result.StopReason != StopDuration {
		t.Errorf("expected %q, got %q", StopDuration, result.StopReason)
	}
	if result.Elapsed < cfg.Duration {
		t.Errorf("expected at least %v elapsed, got %v", cfg.Duration, result.Elapsed)
	}
}

func TestRun_Interrupted(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	cfg := fastConfig("a.h264")
	cfg.Repeat = true

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	result, err := f.orch.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("expected no error on interrupt, got %v", err)
	}
	if !result.Interrupted || result.StopReason != StopInterrupted {
		t.Errorf("expected an interrupted result, got %+v", result)
	}
	if len(result.Streams) != 1 || result.Streams[0].Outcome != "shutdown" {
		t.Errorf("unexpected streams %+v", result.Streams)
	}
}

func TestRun_RealTime(t *testing.T) {
	f := newFixture(t, false, "a.h264")
	cfg := DefaultConfig()
	cfg.Videos = []string{"a.h264"}
	cfg.Pacing = playback.RealTime
	cfg.FPS = 500
	cfg.TickRate = 1000

	result := run(t, f, cfg)

	if result.Mode != "realtime" {
		t.Errorf("expected realtime mode, got %q", result.Mode)
	}
	if result.Streams[0].Displayed != 4 {
		t.Errorf("expected 4 displayed frames, got %d", result.Streams[0].Displayed)
	}
}

func TestRun_SinkError(t *testing.T) {
	f := newFixture(t, true, "a.h264")
	errDisk := errors.New("disk full")
	f.sink.SaveFrameFunc = func(string, int, image.Image) error { return errDisk }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.orch.Run(ctx, fastConfig("a.h264"))
	if !errors.Is(err, errDisk) {
		t.Fatalf("expected the sink error, got %v", err)
	}
	if !f.log.Contains(ports.LevelError, "Failed to save snapshot") {
		t.Error("expected the failure to be logged")
	}
}

func TestRun_NoVideos(t *testing.T) {
	f := newFixture(t, false)
	if _, err := f.orch.Run(context.Background(), DefaultConfig()); !errors.Is(err, ErrNoVideos) {
		t.Errorf("expected ErrNoVideos, got %v", err)
	}
}

func TestRun_DecoderUnavailable(t *testing.T) {
	errNoDecoder := errors.New("no decoder")
	fs := mocks.NewFileSystem()
	fs.WriteFile("a.h264", testStream)
	targets := surface.NewStore()
	log := mocks.NewLogger()
	orch := New(assetstore.New(fs, log), targets,
		func() (ports.H264Decoder, error) { return nil, errNoDecoder },
		mocks.NewFrameSink(false), log)

	_, err := orch.Run(context.Background(), fastConfig("a.h264"))
	if !errors.Is(err, errNoDecoder) {
		t.Fatalf("expected the decoder error, got %v", err)
	}
	if targets.Len() != 0 {
		t.Errorf("expected render targets to be removed, %d left", targets.Len())
	}
}

func TestConfig_Timing(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TickInterval(); got != time.Second/30 {
		t.Errorf("fixed-step interval: got %v", got)
	}
	if p := cfg.PlaybackPacing(); p.Mode != playback.FixedStep || p.FrameTime != 0 {
		t.Errorf("fixed-step pacing: got %+v", p)
	}

	cfg.Pacing = playback.RealTime
	cfg.FPS = 25
	cfg.TickRate = 100
	if got := cfg.TickInterval(); got != 10*time.Millisecond {
		t.Errorf("real-time interval: got %v", got)
	}
	if p := cfg.PlaybackPacing(); p.FrameTime != 40*time.Millisecond {
		t.Errorf("expected frame time from FPS, got %v", p.FrameTime)
	}

	cfg.FrameTime = 15 * time.Millisecond
	if p := cfg.PlaybackPacing(); p.FrameTime != 15*time.Millisecond {
		t.Errorf("expected explicit frame time, got %v", p.FrameTime)
	}
}

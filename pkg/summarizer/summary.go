// Package summarizer provides summary generation for playback runs.
package summarizer

import "time"

// Summary contains all data collected during a playback run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Run results
	Run RunInfo

	// Playback settings
	Settings Settings

	// Per-video results in removal order
	Streams []StreamInfo
}

// RunInfo contains host-level results.
type RunInfo struct {
	StopReason  string
	Interrupted bool
	Ticks       int
	Elapsed     time.Duration
	TotalFrames int
	Snapshots   int
}

// Settings contains the playback configuration.
type Settings struct {
	Mode     string
	FPS      float64
	TickRate float64

	Repeat   bool
	Restarts int
	// Buffer is the queue capacity per instance (0 = mode default).
	Buffer int

	ColorMode   string
	SnapshotDir string

	// Stop conditions (0 = none)
	MaxFrames int
	Duration  time.Duration
}

// StreamInfo contains the results of one video.
type StreamInfo struct {
	Video   string
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

	Decoded int64
	Empty   int64
	Failed  int64

	Outcome string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets the run results.
func (b *Builder) WithRun(run RunInfo) *Builder {
	b.summary.Run = run
	return b
}

// WithSettings sets playback settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddStream appends the results of one video.
func (b *Builder) AddStream(stream StreamInfo) *Builder {
	b.summary.Streams = append(b.summary.Streams, stream)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// TotalMissed returns the number of missed frames over all streams.
func (s *Summary) TotalMissed() int {
	n := 0
	for _, st := range s.Streams {
		n += st.Missed
	}
	return n
}

// TotalFailed returns the number of units the decoder rejected over all
// streams.
func (s *Summary) TotalFailed() int64 {
	var n int64
	for _, st := range s.Streams {
		n += st.Failed
	}
	return n
}

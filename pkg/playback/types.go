// Package playback schedules decoded frames onto render targets.
//
// A Scheduler owns any number of playback instances. Each instance has its
// own decode worker and frame queue; the scheduler runs on the host's tick
// goroutine and performs, in order, on every Tick:
//
//  1. asset-status checks for instances that are still loading
//  2. frame consumption for active instances (subject to pacing)
//  3. feed refill, keeping queued plus in-flight units at the capacity
//  4. restart requests
//
// Tick never waits on decoding. The only lock it contends on with the
// workers is the frame queue mutex.
package playback

import (
	"errors"
	"time"

	"github.com/user/h264play/pkg/colorconv"
	"github.com/user/h264play/pkg/ports"
	"github.com/user/h264play/pkg/worker"
)

// Default queue capacities per pacing mode.
const (
	DefaultFixedStepCapacity = 10
	DefaultRealTimeCapacity  = 4
)

var (
	// ErrUnknownInstance is returned for ids that are not (or no longer)
	// managed by the scheduler.
	ErrUnknownInstance = errors.New("playback: unknown instance")

	// ErrInvalidPacing is returned by Start for real-time pacing without a
	// positive frame time.
	ErrInvalidPacing = errors.New("playback: real-time pacing needs a positive frame time")

	// ErrShutdown is returned by Start after Shutdown.
	ErrShutdown = errors.New("playback: scheduler is shut down")

	// ErrInvalidState is returned by Pause and Resume when the instance is
	// not in a state the request applies to.
	ErrInvalidState = errors.New("playback: invalid state for request")
)

// InstanceID identifies a playback instance within a Scheduler.
type InstanceID uint64

// PacingMode decides when an instance advances to its next frame.
type PacingMode int

const (
	// FixedStep advances one frame on every tick. The host controls the
	// frame rate through its tick rate.
	FixedStep PacingMode = iota
	// RealTime advances once the accumulated tick time exceeds the frame
	// time.
	RealTime
)

// String returns the string representation of the pacing mode.
func (m PacingMode) String() string {
	switch m {
	case FixedStep:
		return "fixed"
	case RealTime:
		return "realtime"
	default:
		return "unknown"
	}
}

// ParsePacingMode parses "fixed" or "realtime".
func ParsePacingMode(s string) (PacingMode, bool) {
	switch s {
	case "fixed", "":
		return FixedStep, true
	case "realtime":
		return RealTime, true
	default:
		return FixedStep, false
	}
}

// Pacing configures frame advancement for one instance.
type Pacing struct {
	Mode PacingMode

	// FrameTime is the display duration of one frame. Only used by
	// RealTime.
	FrameTime time.Duration
}

// Status is the lifecycle state of an instance. Removed instances are no
// longer known to the scheduler and have no status.
type Status int

const (
	StatusLoading Status = iota
	StatusActive
	StatusPaused
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Options describes a playback instance.
type Options struct {
	Video  ports.VideoRef
	Target ports.TargetID

	// Repeat loops the video. Without it the instance pauses after the
	// last frame.
	Repeat bool

	Pacing Pacing

	// Capacity bounds the frame queue. Zero selects the pacing mode's
	// default.
	Capacity int
}

// Deps are the collaborators a Scheduler needs.
type Deps struct {
	Assets     ports.AssetProvider
	Targets    ports.RenderTargets
	NewDecoder ports.DecoderFactory
	ColorMode  colorconv.Mode
}

// Update announces that a frame was written to a render target.
type Update struct {
	Instance InstanceID
	Target   ports.TargetID

	// Frame is the index of the displayed frame within the current loop.
	Frame int

	Width  int
	Height int
}

// Info is a snapshot of one instance.
type Info struct {
	ID      InstanceID
	Video   ports.VideoRef
	Target  ports.TargetID
	Status  Status
	Options Options

	FrameCount int
	NextFrame  int
	FeedIndex  int
	Queued     int
	Pending    int
	Generation uint64

	Displayed int // frames written to the target
	Missed    int // eligible ticks that found the queue empty
	Discarded int // stale frames dropped after a restart

	Worker worker.Stats

	// Reason is set on instances returned by Scheduler.Removed.
	Reason string
}

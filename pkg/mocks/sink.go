package mocks

import (
	"image"
	"sync"

	"github.com/user/h264play/pkg/ports"
)

// SavedFrame records a call to FrameSink.SaveFrame.
type SavedFrame struct {
	Stream string
	Index  int
	Image  image.Image
}

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	mu sync.RWMutex

	enabled bool

	SaveFrameFunc func(stream string, index int, img image.Image) error

	Frames []SavedFrame
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink(enabled bool) *FrameSink {
	return &FrameSink{enabled: enabled}
}

func (m *FrameSink) Enabled() bool {
	return m.enabled
}

func (m *FrameSink) SaveFrame(stream string, index int, img image.Image) error {
	m.mu.Lock()
	m.Frames = append(m.Frames, SavedFrame{Stream: stream, Index: index, Image: img})
	fn := m.SaveFrameFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(stream, index, img)
	}
	return nil
}

// Saved returns a copy of the recorded frames.
func (m *FrameSink) Saved() []SavedFrame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SavedFrame(nil), m.Frames...)
}

var _ ports.FrameSink = (*FrameSink)(nil)

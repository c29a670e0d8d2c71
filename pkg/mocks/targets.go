package mocks

import (
	"sync"

	"github.com/user/h264play/pkg/ports"
)

// RenderTargets is a mock implementation of ports.RenderTargets.
type RenderTargets struct {
	mu      sync.Mutex
	targets map[ports.TargetID]*RenderTarget
}

// NewRenderTargets creates an empty target set.
func NewRenderTargets() *RenderTargets {
	return &RenderTargets{targets: make(map[ports.TargetID]*RenderTarget)}
}

// Add registers a w x h target under id and returns it.
func (m *RenderTargets) Add(id ports.TargetID, w, h int) *RenderTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &RenderTarget{}
	t.Resize(w, h)
	t.ResizeCalls = 0
	m.targets[id] = t
	return t
}

// Delete removes the target registered under id.
func (m *RenderTargets) Delete(id ports.TargetID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.targets, id)
}

func (m *RenderTargets) Target(id ports.TargetID) (ports.RenderTarget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	if !ok {
		return nil, false
	}
	return t, true
}

var _ ports.RenderTargets = (*RenderTargets)(nil)

// RenderTarget is a mock implementation of ports.RenderTarget.
type RenderTarget struct {
	W, H int
	Pix  []byte

	ResizeCalls int
}

func (m *RenderTarget) Size() (int, int) {
	return m.W, m.H
}

func (m *RenderTarget) Resize(w, h int) {
	m.ResizeCalls++
	m.W, m.H = w, h
	m.Pix = make([]byte, w*h*4)
}

func (m *RenderTarget) Pixels() []byte {
	return m.Pix
}

var _ ports.RenderTarget = (*RenderTarget)(nil)

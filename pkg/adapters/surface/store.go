// Package surface keeps BGRA8 render targets in memory. It stands in for a
// host's texture storage: the playback scheduler writes into a Surface and
// the host reads the pixels back after each update.
package surface

import (
	"image"
	"sync"

	"github.com/user/h264play/pkg/colorconv"
	"github.com/user/h264play/pkg/ports"
)

// Default placeholder size of a new surface. The first displayed frame
// resizes it.
const (
	DefaultWidth  = 12
	DefaultHeight = 12
)

// Surface is a resizable BGRA8 pixel buffer.
type Surface struct {
	width  int
	height int
	pix    []byte
}

// NewSurface returns a zero-filled w x h surface.
func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.Resize(w, h)
	return s
}

// Size implements ports.RenderTarget.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Resize implements ports.RenderTarget. The contents are cleared.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.width, s.height = w, h
	n := colorconv.BufferSize(w, h)
	if cap(s.pix) >= n {
		s.pix = s.pix[:n]
		clear(s.pix)
		return
	}
	s.pix = make([]byte, n)
}

// Pixels implements ports.RenderTarget.
func (s *Surface) Pixels() []byte {
	return s.pix
}

// Image returns a copy of the surface as an RGBA image.
func (s *Surface) Image() *image.RGBA {
	return colorconv.BGRAToRGBA(s.pix, s.width, s.height)
}

var _ ports.RenderTarget = (*Surface)(nil)

// Store owns surfaces and hands out TargetIDs for them.
type Store struct {
	mu       sync.RWMutex
	surfaces map[ports.TargetID]*Surface
	nextID   ports.TargetID
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{surfaces: make(map[ports.TargetID]*Surface)}
}

// Create adds a zero-filled surface and returns its id. Sizes of zero or
// less select the default placeholder size.
func (st *Store) Create(w, h int) ports.TargetID {
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextID++
	st.surfaces[st.nextID] = NewSurface(w, h)
	return st.nextID
}

// Target implements ports.RenderTargets.
func (st *Store) Target(id ports.TargetID) (ports.RenderTarget, bool) {
	s, ok := st.Surface(id)
	if !ok {
		return nil, false
	}
	return s, true
}

// Surface returns the concrete surface for id.
func (st *Store) Surface(id ports.TargetID) (*Surface, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.surfaces[id]
	return s, ok
}

// Remove deletes a surface. Playback instances still pointing at it are
// removed on their next frame.
func (st *Store) Remove(id ports.TargetID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.surfaces[id]; !ok {
		return false
	}
	delete(st.surfaces, id)
	return true
}

// Len returns the number of surfaces.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.surfaces)
}

var _ ports.RenderTargets = (*Store)(nil)

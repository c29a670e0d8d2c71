package mocks

import (
	"sync"

	"github.com/user/h264play/pkg/ports"
)

// Decoder is a mock implementation of ports.H264Decoder.
//
// Without DecodeFunc every unit produces a 2x2 grey picture whose luma is the
// unit's last byte, which lets tests identify frames by content.
type Decoder struct {
	mu sync.Mutex

	DecodeFunc func(unit []byte) (*ports.Picture, error)
	CloseFunc  func()

	// Recorded calls for verification
	DecodeCalls [][]byte
	CloseCalls  int
}

func (m *Decoder) Decode(unit []byte) (*ports.Picture, error) {
	m.mu.Lock()
	m.DecodeCalls = append(m.DecodeCalls, unit)
	fn := m.DecodeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(unit)
	}
	if len(unit) == 0 {
		return nil, nil
	}
	return GreyPicture(2, 2, unit[len(unit)-1]), nil
}

func (m *Decoder) Close() {
	m.mu.Lock()
	m.CloseCalls++
	fn := m.CloseFunc
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Decoded returns a copy of the units passed to Decode so far.
func (m *Decoder) Decoded() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.DecodeCalls...)
}

// Closed reports how many times Close was called.
func (m *Decoder) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseCalls
}

var _ ports.H264Decoder = (*Decoder)(nil)

// GreyPicture returns a w x h picture with uniform luma and neutral chroma.
// Converted to BGRA8 every pixel is (luma, luma, luma, 255).
func GreyPicture(w, h int, luma byte) *ports.Picture {
	cw, ch := (w+1)/2, (h+1)/2
	y := make([]byte, w*h)
	for i := range y {
		y[i] = luma
	}
	u := make([]byte, cw*ch)
	v := make([]byte, cw*ch)
	for i := range u {
		u[i] = 128
		v[i] = 128
	}
	return &ports.Picture{
		Y: y, U: u, V: v,
		StrideY: w, StrideU: cw, StrideV: cw,
		Width: w, Height: h,
	}
}

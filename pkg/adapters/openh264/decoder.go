// Package openh264 decodes H.264 Annex B access units with Cisco's OpenH264
// library.
//
// The binding needs cgo and the openh264 pkg-config package. Builds without
// cgo get a stub whose constructor fails with ErrUnavailable.
package openh264

import (
	"errors"

	"github.com/user/h264play/pkg/ports"
)

var (
	// ErrUnavailable is returned when the OpenH264 library cannot be used.
	ErrUnavailable = errors.New("openh264: decoder unavailable")

	// ErrDecodeFailed is returned when the library rejects an access unit.
	// The decoder stays usable for the following units.
	ErrDecodeFailed = errors.New("openh264: decode failed")

	// ErrClosed is returned by Decode after Close.
	ErrClosed = errors.New("openh264: decoder closed")
)

// Decoder is a stateful OpenH264 decoder. It is not safe for concurrent use;
// a playback worker owns exactly one.
type Decoder struct {
	h *handle
}

// New creates and initializes a decoder for AVC Annex B input.
func New() (*Decoder, error) {
	h, err := openHandle()
	if err != nil {
		return nil, err
	}
	return &Decoder{h: h}, nil
}

// NewH264Decoder is a ports.DecoderFactory.
func NewH264Decoder() (ports.H264Decoder, error) {
	d, err := New()
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Available reports whether a decoder can be created on this system.
func Available() bool {
	d, err := New()
	if err != nil {
		return false
	}
	d.Close()
	return true
}

// Decode feeds one access unit, start code included. It returns (nil, nil)
// when the unit completed no picture. The returned planes alias decoder
// memory and are overwritten by the next call.
func (d *Decoder) Decode(unit []byte) (*ports.Picture, error) {
	if d.h == nil {
		return nil, ErrClosed
	}
	if len(unit) == 0 {
		return nil, nil
	}
	return d.h.decode(unit)
}

// Close releases the library decoder.
func (d *Decoder) Close() {
	if d.h != nil {
		d.h.close()
		d.h = nil
	}
}

var _ ports.H264Decoder = (*Decoder)(nil)

// Package colorconv converts planar YUV 4:2:0 pictures into packed BGRA8.
//
// The conversion is the BT.601 approximation used by the playback core:
//
//	B = Y + 1.772*(U-128)
//	G = Y - 0.344*(U-128) - 0.714*(V-128)
//	R = Y + 1.402*(V-128)
//	A = 255
//
// computed in float32. How a channel outside 0..255 is narrowed to a byte is
// selected by Mode.
package colorconv

import (
	"fmt"
	"image"

	"github.com/user/h264play/pkg/ports"
)

// Mode selects how out-of-range channel values are narrowed to 8 bits.
type Mode int

const (
	// ModeWrap truncates toward zero and keeps the low 8 bits, so values
	// outside 0..255 wrap around. It is the default.
	ModeWrap Mode = iota
	// ModeClamp truncates toward zero and saturates to 0..255.
	ModeClamp
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeWrap:
		return "wrap"
	case ModeClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// ParseMode parses "wrap" or "clamp".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "wrap", "":
		return ModeWrap, nil
	case "clamp":
		return ModeClamp, nil
	default:
		return ModeWrap, fmt.Errorf("colorconv: unknown mode %q", s)
	}
}

// BufferSize returns the size in bytes of a BGRA8 buffer for w x h pixels.
func BufferSize(w, h int) int {
	return w * h * 4
}

// ToBGRA8 allocates a buffer and converts pic into it.
func ToBGRA8(pic *ports.Picture, mode Mode) []byte {
	dst := make([]byte, BufferSize(pic.Width, pic.Height))
	WriteBGRA8(dst, pic, mode)
	return dst
}

// WriteBGRA8 converts pic into dst, which must hold at least
// BufferSize(pic.Width, pic.Height) bytes. Chroma samples are addressed with
// truncating x/2 and y/2. WriteBGRA8 does not allocate.
func WriteBGRA8(dst []byte, pic *ports.Picture, mode Mode) {
	w, h := pic.Width, pic.Height
	if w <= 0 || h <= 0 {
		return
	}
	_ = dst[BufferSize(w, h)-1]

	for y := 0; y < h; y++ {
		yRow := pic.Y[y*pic.StrideY : y*pic.StrideY+w]
		uRow := pic.U[(y/2)*pic.StrideU:]
		vRow := pic.V[(y/2)*pic.StrideV:]
		out := dst[y*w*4 : (y+1)*w*4]

		if mode == ModeClamp {
			clampRow(out, yRow, uRow, vRow)
		} else {
			wrapRow(out, yRow, uRow, vRow)
		}
	}
}

// wrapRow and clampRow convert one row of pixels.
func wrapRow(out, yRow, uRow, vRow []byte) {
	for x := range yRow {
		luma := float32(yRow[x])
		u := float32(uRow[x/2]) - 128
		v := float32(vRow[x/2]) - 128

		px := out[x*4 : x*4+4 : x*4+4]
		px[0] = wrap(luma + 1.772*u)
		px[1] = wrap(luma - 0.344*u - 0.714*v)
		px[2] = wrap(luma + 1.402*v)
		px[3] = 255
	}
}

func clampRow(out, yRow, uRow, vRow []byte) {
	for x := range yRow {
		luma := float32(yRow[x])
		u := float32(uRow[x/2]) - 128
		v := float32(vRow[x/2]) - 128

		px := out[x*4 : x*4+4 : x*4+4]
		px[0] = clamp(luma + 1.772*u)
		px[1] = clamp(luma - 0.344*u - 0.714*v)
		px[2] = clamp(luma + 1.402*v)
		px[3] = 255
	}
}

func wrap(f float32) byte {
	return byte(int32(f))
}

func clamp(f float32) byte {
	i := int32(f)
	switch {
	case i < 0:
		return 0
	case i > 255:
		return 255
	default:
		return byte(i)
	}
}

// BGRAToRGBA copies a BGRA8 buffer into a new image.RGBA.
func BGRAToRGBA(pix []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	n := BufferSize(w, h)
	if len(pix) < n {
		n = len(pix) - len(pix)%4
	}
	for i := 0; i < n; i += 4 {
		img.Pix[i+0] = pix[i+2]
		img.Pix[i+1] = pix[i+1]
		img.Pix[i+2] = pix[i+0]
		img.Pix[i+3] = pix[i+3]
	}
	return img
}

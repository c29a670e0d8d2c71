// Package bitstream splits an H.264 Annex B elementary stream into access
// units and classifies them.
//
// Every access unit keeps its own leading start code (00 00 01 or
// 00 00 00 01), so concatenating the units of a stream that begins with a
// start code reproduces the stream byte for byte.
package bitstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// AccessUnit is one start-code delimited unit of the stream, start code
// included. Units are never modified after segmentation.
type AccessUnit []byte

// ErrLoad is returned when the stream bytes cannot be read to completion.
var ErrLoad = errors.New("bitstream: load failed")

// Load reads r to completion and segments the result.
func Load(r io.Reader) ([]AccessUnit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Segment(data), nil
}

// Segment scans data for start codes and returns the units in stream order.
// Bytes before the first start code are discarded. A stream without any start
// code yields no units.
//
// The returned units alias data.
func Segment(data []byte) []AccessUnit {
	starts := startCodePositions(data)
	if len(starts) == 0 {
		return nil
	}

	units := make([]AccessUnit, 0, len(starts))
	for i, start := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		units = append(units, AccessUnit(data[start:end:end]))
	}
	return units
}

// startCodePositions returns the offsets at which each start code begins. A
// four byte start code is reported at its leading zero so the zero is not
// attributed to the previous unit.
func startCodePositions(data []byte) []int {
	var positions []int
	n := len(data)
	i := 0
	for i+2 < n {
		if data[i] != 0 || data[i+1] != 0 {
			i++
			continue
		}
		if i+3 < n && data[i+2] == 0 && data[i+3] == 1 {
			positions = append(positions, i)
			i += 4
			continue
		}
		if data[i+2] == 1 {
			positions = append(positions, i)
			i += 3
			continue
		}
		i++
	}
	return positions
}

// Join re-delimits units into a byte stream. Since units carry their start
// codes this is a plain concatenation.
func Join(units []AccessUnit) []byte {
	size := 0
	for _, u := range units {
		size += len(u)
	}
	var buf bytes.Buffer
	buf.Grow(size)
	for _, u := range units {
		buf.Write(u)
	}
	return buf.Bytes()
}

// StartCodeLen returns 4 or 3 for a unit beginning with a start code, and 0
// otherwise.
func StartCodeLen(au []byte) int {
	switch {
	case len(au) >= 4 && au[0] == 0 && au[1] == 0 && au[2] == 0 && au[3] == 1:
		return 4
	case len(au) >= 3 && au[0] == 0 && au[1] == 0 && au[2] == 1:
		return 3
	default:
		return 0
	}
}

// Payload returns the NAL unit bytes following the start code, header byte
// included.
func Payload(au []byte) []byte {
	return au[StartCodeLen(au):]
}

// Raw converts units to plain byte slices without copying.
func Raw(units []AccessUnit) [][]byte {
	out := make([][]byte, len(units))
	for i, u := range units {
		out[i] = u
	}
	return out
}

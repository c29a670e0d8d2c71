package bitstream

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Eyevinn/mp4ff/avc"
)

// ErrNoSPS is returned by Describe when the stream has no sequence parameter
// set, so picture dimensions are unknown.
var ErrNoSPS = errors.New("bitstream: no SPS in stream")

// Type returns the NAL unit type of an access unit. Units without a payload
// report type 0 (unspecified).
func Type(au []byte) avc.NaluType {
	p := Payload(au)
	if len(p) == 0 {
		return 0
	}
	return avc.GetNaluType(p[0])
}

// IsParameterSet reports whether the unit is an SPS or PPS.
func IsParameterSet(au []byte) bool {
	t := Type(au)
	return t == avc.NALU_SPS || t == avc.NALU_PPS
}

// IsPicture reports whether the unit carries slice data (IDR or non-IDR).
func IsPicture(au []byte) bool {
	t := Type(au)
	return t == avc.NALU_IDR || t == avc.NALU_NON_IDR
}

// StreamInfo summarizes a segmented stream.
type StreamInfo struct {
	Units         int
	Pictures      int
	ParameterSets int
	Bytes         int

	// Width, Height, Profile and Level come from the first SPS.
	Width   int
	Height  int
	Profile int
	Level   int

	// Types counts units per NAL type name.
	Types map[string]int
}

// TypeNames returns the keys of Types in sorted order.
func (s StreamInfo) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe counts the units of a stream and parses the first SPS. The counts
// are valid even when ErrNoSPS is returned.
func Describe(units []AccessUnit) (StreamInfo, error) {
	info := StreamInfo{
		Units: len(units),
		Types: make(map[string]int),
	}

	var sps []byte
	for _, u := range units {
		info.Bytes += len(u)
		t := Type(u)
		info.Types[t.String()]++

		switch t {
		case avc.NALU_IDR, avc.NALU_NON_IDR:
			info.Pictures++
		case avc.NALU_SPS:
			info.ParameterSets++
			if sps == nil {
				sps = Payload(u)
			}
		case avc.NALU_PPS:
			info.ParameterSets++
		}
	}

	if sps == nil {
		return info, ErrNoSPS
	}

	parsed, err := avc.ParseSPSNALUnit(sps, false)
	if err != nil {
		return info, fmt.Errorf("parse SPS: %w", err)
	}
	info.Width = int(parsed.Width)
	info.Height = int(parsed.Height)
	info.Profile = int(parsed.Profile)
	info.Level = int(parsed.Level)

	return info, nil
}

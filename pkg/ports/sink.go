package ports

import "image"

// FrameSink receives copies of displayed frames, e.g. to write them to disk.
type FrameSink interface {
	// Enabled reports whether SaveFrame does anything. Hosts skip the
	// pixel copy entirely when it returns false.
	Enabled() bool

	// SaveFrame stores the frame shown by a playback instance. index counts
	// displayed frames per stream, starting at zero.
	SaveFrame(stream string, index int, img image.Image) error
}

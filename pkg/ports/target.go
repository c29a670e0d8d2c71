package ports

// TargetID is an opaque handle to a pixel surface owned by the host.
type TargetID uint64

// RenderTarget is a BGRA8 pixel surface. The playback core only writes to it
// during its own tick and never keeps a reference across ticks.
type RenderTarget interface {
	// Size returns the current dimensions in pixels.
	Size() (width, height int)

	// Resize changes the dimensions. Pixels must return a buffer of
	// width*height*4 bytes afterwards.
	Resize(width, height int)

	// Pixels returns the writable pixel buffer.
	Pixels() []byte
}

// RenderTargets resolves target handles. A target may disappear at any time;
// lookups then report false.
type RenderTargets interface {
	Target(id TargetID) (RenderTarget, bool)
}

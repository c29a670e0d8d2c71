package ports

// Picture is one decoded picture in planar YUV 4:2:0 layout. U and V are
// subsampled by two in both dimensions and every plane has its own stride.
//
// The plane slices may alias decoder-owned memory and are only valid until
// the next call to Decode on the decoder that produced them.
type Picture struct {
	Y, U, V []byte

	StrideY int
	StrideU int
	StrideV int

	Width  int
	Height int
}

// H264Decoder is a stateful decoder fed one access unit at a time.
//
// Decode returns (nil, nil) when the unit did not complete a picture, for
// example parameter-set units. A non-nil error only invalidates the unit that
// was passed in; decoder state is kept for the following units.
type H264Decoder interface {
	Decode(unit []byte) (*Picture, error)
	Close()
}

// DecoderFactory creates a fresh decoder for a new playback instance.
type DecoderFactory func() (H264Decoder, error)

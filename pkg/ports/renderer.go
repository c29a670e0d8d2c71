package ports

import "image"

// Renderer abstracts the image operations used when snapshotting displayed
// frames.
type Renderer interface {
	// EncodeImage encodes an image to the specified format. Quality is only
	// used for JPEG.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// Annotate returns a copy of img with a text label drawn in the top-left
	// corner.
	Annotate(img image.Image, label string) image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

// Extension returns the file extension for the format, without the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

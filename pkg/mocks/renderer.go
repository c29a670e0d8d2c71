package mocks

import (
	"image"

	"github.com/user/h264play/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image
	AnnotateFunc    func(img image.Image, label string) image.Image

	// Recorded calls for verification
	Labels []string
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) Annotate(img image.Image, label string) image.Image {
	m.Labels = append(m.Labels, label)
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(img, label)
	}
	return img
}

var _ ports.Renderer = (*Renderer)(nil)

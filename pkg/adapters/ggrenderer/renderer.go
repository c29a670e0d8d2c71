// Package ggrenderer implements ports.Renderer with the gg drawing library
// and x/image scalers. It prepares snapshots of displayed frames.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/h264play/pkg/ports"
)

// Label box styling.
var (
	labelBackground = color.RGBA{0, 0, 0, 160}
	labelForeground = color.White
)

const labelPadding = 4.0

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage scales an image to exactly width x height.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Annotate draws label in a translucent box at the top-left corner of a
// copy of img.
func (r *Renderer) Annotate(img image.Image, label string) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	if label == "" {
		return dc.Image()
	}

	tw, th := dc.MeasureString(label)
	dc.SetColor(labelBackground)
	dc.DrawRectangle(0, 0, tw+2*labelPadding, th+2*labelPadding)
	dc.Fill()

	dc.SetColor(labelForeground)
	dc.DrawStringAnchored(label, labelPadding, labelPadding, 0, 1)

	return dc.Image()
}

// FitWidth returns the height that keeps w x h's aspect ratio at the given
// width. A zero width keeps the original size.
func FitWidth(w, h, width int) (int, int) {
	if width <= 0 || w <= 0 {
		return w, h
	}
	height := h * width / w
	if height < 1 {
		height = 1
	}
	return width, height
}

var _ ports.Renderer = (*Renderer)(nil)

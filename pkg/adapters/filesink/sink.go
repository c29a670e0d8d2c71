// Package filesink writes displayed frames to image files.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/h264play/pkg/ports"
)

// Options controls how frames are written.
type Options struct {
	Format  ports.ImageFormat
	Quality int

	// Width scales frames to this width keeping the aspect ratio. Zero
	// keeps the decoded size.
	Width int

	// Annotate draws the stream name and frame index onto each frame.
	Annotate bool
}

// Sink saves frames below a base directory, one subdirectory per stream.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	opts     Options
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, opts Options) *Sink {
	if opts.Quality <= 0 {
		opts.Quality = 90
	}
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		opts:     opts,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame writes img to <base>/<stream>/frame-NNNNNN.<ext>.
func (s *Sink) SaveFrame(stream string, index int, img image.Image) error {
	if w := s.opts.Width; w > 0 {
		b := img.Bounds()
		if b.Dx() > 0 && b.Dx() != w {
			h := b.Dy() * w / b.Dx()
			if h < 1 {
				h = 1
			}
			img = s.renderer.ResizeImage(img, w, h)
		}
	}
	if s.opts.Annotate {
		img = s.renderer.Annotate(img, fmt.Sprintf("%s #%d", stream, index))
	}

	data, err := s.renderer.EncodeImage(img, s.opts.Format, s.opts.Quality)
	if err != nil {
		return fmt.Errorf("encode frame %d of %s: %w", index, stream, err)
	}

	dir := filepath.Join(s.baseDir, streamDir(stream))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%06d.%s", index, s.opts.Format.Extension()))
	return s.fs.WriteFile(path, data)
}

// streamDir turns a stream name (usually a file path) into a single path
// element.
func streamDir(stream string) string {
	name := filepath.Base(stream)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "stream"
	}
	return name
}

var _ ports.FrameSink = (*Sink)(nil)

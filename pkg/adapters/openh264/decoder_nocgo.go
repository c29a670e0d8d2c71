//go:build !cgo

package openh264

import "github.com/user/h264play/pkg/ports"

// handle is a placeholder for builds without cgo.
type handle struct{}

func openHandle() (*handle, error) {
	return nil, ErrUnavailable
}

func (h *handle) decode(unit []byte) (*ports.Picture, error) {
	return nil, ErrUnavailable
}

func (h *handle) close() {}

// Package assetstore loads H.264 elementary streams from a ports.FileSystem
// in the background and serves their access units to the playback
// scheduler.
package assetstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/h264play/pkg/bitstream"
	"github.com/user/h264play/pkg/ports"
)

type entry struct {
	status ports.LoadStatus
	units  [][]byte
	info   bitstream.StreamInfo
	err    error
	done   chan struct{}
}

// Store is an asynchronous ports.AssetProvider. VideoRefs are file paths.
type Store struct {
	fs  ports.FileSystem
	log ports.Logger

	mu      sync.RWMutex
	entries map[ports.VideoRef]*entry
}

// New creates an empty Store.
func New(fs ports.FileSystem, log ports.Logger) *Store {
	return &Store{
		fs:      fs,
		log:     log.WithComponent("assets"),
		entries: make(map[ports.VideoRef]*entry),
	}
}

// Load starts loading ref in the background. Loading the same ref twice
// reuses the first load.
func (s *Store) Load(ref ports.VideoRef) {
	s.mu.Lock()
	if _, ok := s.entries[ref]; ok {
		s.mu.Unlock()
		return
	}
	e := &entry{status: ports.StatusLoading, done: make(chan struct{})}
	s.entries[ref] = e
	s.mu.Unlock()

	go s.load(ref, e)
}

func (s *Store) load(ref ports.VideoRef, e *entry) {
	defer close(e.done)

	status, units, err := s.read(string(ref))

	var info bitstream.StreamInfo
	if err == nil {
		var derr error
		info, derr = bitstream.Describe(units)
		if derr != nil {
			s.log.Debug("Stream %s: %v", ref, derr)
		}
	}

	s.mu.Lock()
	e.status = status
	e.err = err
	e.info = info
	if err == nil {
		e.units = bitstream.Raw(units)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("Failed to load %s: %v", ref, err)
		return
	}
	s.log.Debug("Loaded %s: %d access units, %d bytes", ref, info.Units, info.Bytes)
}

func (s *Store) read(path string) (ports.LoadStatus, []bitstream.AccessUnit, error) {
	exists, err := s.fs.Exists(path)
	if err != nil {
		return ports.StatusFailed, nil, fmt.Errorf("%w: %w", bitstream.ErrLoad, err)
	}
	if !exists {
		return ports.StatusNotFound, nil, fmt.Errorf("%w: %s does not exist", bitstream.ErrLoad, path)
	}

	r, err := s.fs.Open(path)
	if err != nil {
		return ports.StatusFailed, nil, fmt.Errorf("%w: %w", bitstream.ErrLoad, err)
	}
	defer r.Close()

	units, err := bitstream.Load(r)
	if err != nil {
		return ports.StatusFailed, nil, err
	}
	return ports.StatusReady, units, nil
}

// Status implements ports.AssetProvider. Refs that were never loaded report
// StatusNotFound.
func (s *Store) Status(ref ports.VideoRef) ports.LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ref]
	if !ok {
		return ports.StatusNotFound
	}
	return e.status
}

// Units implements ports.AssetProvider.
func (s *Store) Units(ref ports.VideoRef) ([][]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ref]
	if !ok || e.status != ports.StatusReady {
		return nil, false
	}
	return e.units, true
}

// Info returns the stream description of a loaded asset.
func (s *Store) Info(ref ports.VideoRef) (bitstream.StreamInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ref]
	if !ok || e.status != ports.StatusReady {
		return bitstream.StreamInfo{}, false
	}
	return e.info, true
}

// Err returns the load error of a failed asset.
func (s *Store) Err(ref ports.VideoRef) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[ref]; ok {
		return e.err
	}
	return nil
}

// Wait blocks until every load started so far has finished or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	s.mu.RLock()
	pending := make([]chan struct{}, 0, len(s.entries))
	for _, e := range s.entries {
		pending = append(pending, e.done)
	}
	s.mu.RUnlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

var _ ports.AssetProvider = (*Store)(nil)

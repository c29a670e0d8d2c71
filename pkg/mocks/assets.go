package mocks

import (
	"sync"

	"github.com/user/h264play/pkg/ports"
)

// AssetProvider is a mock implementation of ports.AssetProvider backed by
// in-memory maps. Refs that were never registered report StatusNotFound.
type AssetProvider struct {
	mu     sync.RWMutex
	status map[ports.VideoRef]ports.LoadStatus
	units  map[ports.VideoRef][][]byte

	StatusCalls int
}

// NewAssetProvider creates a new mock AssetProvider.
func NewAssetProvider() *AssetProvider {
	return &AssetProvider{
		status: make(map[ports.VideoRef]ports.LoadStatus),
		units:  make(map[ports.VideoRef][][]byte),
	}
}

// SetLoading registers ref as still loading.
func (m *AssetProvider) SetLoading(ref ports.VideoRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[ref] = ports.StatusLoading
}

// SetReady registers ref as loaded with the given units.
func (m *AssetProvider) SetReady(ref ports.VideoRef, units [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[ref] = ports.StatusReady
	m.units[ref] = units
}

// SetFailed registers ref as failed to load.
func (m *AssetProvider) SetFailed(ref ports.VideoRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[ref] = ports.StatusFailed
	delete(m.units, ref)
}

func (m *AssetProvider) Status(ref ports.VideoRef) ports.LoadStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls++
	if s, ok := m.status[ref]; ok {
		return s
	}
	return ports.StatusNotFound
}

func (m *AssetProvider) Units(ref ports.VideoRef) ([][]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status[ref] != ports.StatusReady {
		return nil, false
	}
	return m.units[ref], true
}

var _ ports.AssetProvider = (*AssetProvider)(nil)

// Units builds n one-byte-payload access units whose last byte is the unit
// index, so mocks.Decoder turns unit i into a frame of luma i.
func Units(n int) [][]byte {
	units := make([][]byte, n)
	for i := range units {
		units[i] = []byte{0x00, 0x00, 0x01, 0x65, byte(i)}
	}
	return units
}

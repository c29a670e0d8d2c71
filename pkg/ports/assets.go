package ports

// VideoRef identifies a video asset known to an AssetProvider.
type VideoRef string

// LoadStatus reports how far an asset has progressed through loading.
type LoadStatus int

const (
	StatusLoading LoadStatus = iota
	StatusReady
	StatusFailed
	StatusNotFound
)

// String returns the string representation of the status.
func (s LoadStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// AssetProvider supplies segmented video assets. It is polled once per tick
// for every instance that is still loading.
type AssetProvider interface {
	// Status returns the current load status. Unknown refs report
	// StatusNotFound.
	Status(ref VideoRef) LoadStatus

	// Units returns the access units of a ready asset. The returned slices
	// are shared and must not be modified.
	Units(ref VideoRef) ([][]byte, bool)
}

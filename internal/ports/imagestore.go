package ports

// ImageStore is the storage collaborator. It owns the "most recently
// captured image" notion: SaveLast returns an explicit handle that later
// Resolve calls map the LAST sentinel to. No filesystem convention leaks
// into the protocol layers.
type ImageStore interface {
	// SaveLast stores data as the most recent capture and returns its handle.
	SaveLast(data []byte) (string, error)

	// Resolve maps a requested path to a concrete handle. The LAST sentinel
	// resolves to the most recent capture; anything else passes through
	// after an existence check.
	Resolve(path string) (string, error)

	// Load reads the bytes behind a handle.
	Load(handle string) ([]byte, error)

	// SaveReceived stores a received payload. An empty path picks a
	// timestamped name inside the store directory. Returns the written path.
	SaveReceived(data []byte, path string) (string, error)
}

package storage

// SnapshotStore defines the contract for raw content snapshot storage.
// Snapshots are written by the scraping pipeline and are read-only to
// the monitoring core.
type SnapshotStore interface {
	Store(key string, data []byte) error
	Retrieve(key string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(key string) error
}

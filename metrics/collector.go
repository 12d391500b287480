// Package metrics provides per-process operation counters.
//
// The Collector accumulates counters while a service instance runs. It is
// a leaf package with no internal dependencies; element types are recorded
// by name to keep it free of the types package.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Generation
	DatasetsGenerated int64            `json:"datasets_generated"`
	GenerateFailures  int64            `json:"generate_failures"`
	GeneratedByType   map[string]int64 `json:"generated_by_type"`

	// Paginated reads
	PagesRead    int64 `json:"pages_read"`
	ElementsRead int64 `json:"elements_read"`
	ReadFailures int64 `json:"read_failures"`

	// Storage
	StoragePutSuccess int64 `json:"storage_put_success"`
	StoragePutFailure int64 `json:"storage_put_failure"`
	StorageGetSuccess int64 `json:"storage_get_success"`
	StorageGetFailure int64 `json:"storage_get_failure"`
	StorageDeletes    int64 `json:"storage_deletes"`

	// Staged-copy cleanup
	CleanupFailures int64 `json:"cleanup_failures"`

	// Notifications
	NotifySuccess int64 `json:"notify_success"`
	NotifyFailure int64 `json:"notify_failure"`

	// Dimensions (informational, set at construction)
	StorageBackend string `json:"storage_backend"`
}

// Collector accumulates counters.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	datasetsGenerated int64
	generateFailures  int64
	generatedByType   map[string]int64

	pagesRead    int64
	elementsRead int64
	readFailures int64

	storagePutSuccess int64
	storagePutFailure int64
	storageGetSuccess int64
	storageGetFailure int64
	storageDeletes    int64

	cleanupFailures int64

	notifySuccess int64
	notifyFailure int64

	storageBackend string
}

// NewCollector creates a Collector labelled with the storage backend.
func NewCollector(storageBackend string) *Collector {
	return &Collector{
		generatedByType: make(map[string]int64),
		storageBackend:  storageBackend,
	}
}

// inc applies fn under the lock. No-op on a nil receiver.
func (c *Collector) inc(fn func(c *Collector)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn(c)
	c.mu.Unlock()
}

// --- Generation ---

// IncGenerated records a generated dataset of the named element type.
// Text datasets are recorded as "text".
func (c *Collector) IncGenerated(elementType string) {
	c.inc(func(c *Collector) {
		c.datasetsGenerated++
		c.generatedByType[elementType]++
	})
}

// IncGenerateFailure records a failed generation.
func (c *Collector) IncGenerateFailure() {
	c.inc(func(c *Collector) { c.generateFailures++ })
}

// --- Reads ---

// AddPageRead records a served page holding n elements.
func (c *Collector) AddPageRead(n int) {
	c.inc(func(c *Collector) {
		c.pagesRead++
		c.elementsRead += int64(n)
	})
}

// IncReadFailure records a failed read.
func (c *Collector) IncReadFailure() {
	c.inc(func(c *Collector) { c.readFailures++ })
}

// --- Storage ---
// Storage counters are per-call.

// IncStoragePut records an upload outcome.
func (c *Collector) IncStoragePut(ok bool) {
	c.inc(func(c *Collector) {
		if ok {
			c.storagePutSuccess++
		} else {
			c.storagePutFailure++
		}
	})
}

// IncStorageGet records a download outcome.
func (c *Collector) IncStorageGet(ok bool) {
	c.inc(func(c *Collector) {
		if ok {
			c.storageGetSuccess++
		} else {
			c.storageGetFailure++
		}
	})
}

// IncStorageDelete records a deleted dataset.
func (c *Collector) IncStorageDelete() {
	c.inc(func(c *Collector) { c.storageDeletes++ })
}

// --- Cleanup ---

// IncCleanupFailure records a staged copy that could not be deleted.
func (c *Collector) IncCleanupFailure() {
	c.inc(func(c *Collector) { c.cleanupFailures++ })
}

// --- Notifications ---

// IncNotify records a notification outcome.
func (c *Collector) IncNotify(ok bool) {
	c.inc(func(c *Collector) {
		if ok {
			c.notifySuccess++
		} else {
			c.notifyFailure++
		}
	})
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all counters.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byType := make(map[string]int64, len(c.generatedByType))
	for k, v := range c.generatedByType {
		byType[k] = v
	}

	return Snapshot{
		DatasetsGenerated: c.datasetsGenerated,
		GenerateFailures:  c.generateFailures,
		GeneratedByType:   byType,

		PagesRead:    c.pagesRead,
		ElementsRead: c.elementsRead,
		ReadFailures: c.readFailures,

		StoragePutSuccess: c.storagePutSuccess,
		StoragePutFailure: c.storagePutFailure,
		StorageGetSuccess: c.storageGetSuccess,
		StorageGetFailure: c.storageGetFailure,
		StorageDeletes:    c.storageDeletes,

		CleanupFailures: c.cleanupFailures,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		StorageBackend: c.storageBackend,
	}
}

// Fields returns the snapshot as a flat map for structured logging.
func (s Snapshot) Fields() map[string]any {
	return map[string]any{
		"datasets_generated":  s.DatasetsGenerated,
		"generate_failures":   s.GenerateFailures,
		"generated_by_type":   s.GeneratedByType,
		"pages_read":          s.PagesRead,
		"elements_read":       s.ElementsRead,
		"read_failures":       s.ReadFailures,
		"storage_put_success": s.StoragePutSuccess,
		"storage_put_failure": s.StoragePutFailure,
		"storage_get_success": s.StorageGetSuccess,
		"storage_get_failure": s.StorageGetFailure,
		"storage_deletes":     s.StorageDeletes,
		"cleanup_failures":    s.CleanupFailures,
		"notify_success":      s.NotifySuccess,
		"notify_failure":      s.NotifyFailure,
		"storage_backend":     s.StorageBackend,
	}
}

package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("fs")

	c.IncGenerated("int32")
	c.IncGenerated("int32")
	c.IncGenerated("float64")
	c.IncGenerateFailure()
	c.AddPageRead(10)
	c.AddPageRead(4)
	c.IncReadFailure()
	c.IncStoragePut(true)
	c.IncStoragePut(false)
	c.IncStorageGet(true)
	c.IncStorageGet(true)
	c.IncStorageGet(false)
	c.IncStorageDelete()
	c.IncCleanupFailure()
	c.IncNotify(true)
	c.IncNotify(false)
	c.IncNotify(false)

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"DatasetsGenerated", s.DatasetsGenerated, 3},
		{"GenerateFailures", s.GenerateFailures, 1},
		{"PagesRead", s.PagesRead, 2},
		{"ElementsRead", s.ElementsRead, 14},
		{"ReadFailures", s.ReadFailures, 1},
		{"StoragePutSuccess", s.StoragePutSuccess, 1},
		{"StoragePutFailure", s.StoragePutFailure, 1},
		{"StorageGetSuccess", s.StorageGetSuccess, 2},
		{"StorageGetFailure", s.StorageGetFailure, 1},
		{"StorageDeletes", s.StorageDeletes, 1},
		{"CleanupFailures", s.CleanupFailures, 1},
		{"NotifySuccess", s.NotifySuccess, 1},
		{"NotifyFailure", s.NotifyFailure, 2},
		{"GeneratedByType[int32]", s.GeneratedByType["int32"], 2},
		{"GeneratedByType[float64]", s.GeneratedByType["float64"], 1},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
	if s.StorageBackend != "fs" {
		t.Errorf("StorageBackend = %q, want fs", s.StorageBackend)
	}
}

func TestCollector_SnapshotMapIsolation(t *testing.T) {
	c := NewCollector("memory")
	c.IncGenerated("uint8")

	s := c.Snapshot()
	s.GeneratedByType["uint8"] = 99

	if got := c.Snapshot().GeneratedByType["uint8"]; got != 1 {
		t.Errorf("collector mutated through snapshot: got %d, want 1", got)
	}
}

func TestCollector_NilReceiverSafety(t *testing.T) {
	var c *Collector

	c.IncGenerated("int8")
	c.IncGenerateFailure()
	c.AddPageRead(3)
	c.IncReadFailure()
	c.IncStoragePut(true)
	c.IncStorageGet(false)
	c.IncStorageDelete()
	c.IncCleanupFailure()
	c.IncNotify(true)

	s := c.Snapshot()
	if s.DatasetsGenerated != 0 || s.GeneratedByType != nil {
		t.Errorf("nil collector snapshot should be zero, got %+v", s)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := NewCollector("s3")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.AddPageRead(1)
				c.IncGenerated("int16")
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.PagesRead != 5000 {
		t.Errorf("PagesRead = %d, want 5000", s.PagesRead)
	}
	if s.GeneratedByType["int16"] != 5000 {
		t.Errorf("GeneratedByType[int16] = %d, want 5000", s.GeneratedByType["int16"])
	}
}

func TestSnapshot_Fields(t *testing.T) {
	c := NewCollector("fs")
	c.AddPageRead(7)
	f := c.Snapshot().Fields()
	if f["elements_read"] != int64(7) {
		t.Errorf("elements_read = %v, want 7", f["elements_read"])
	}
	if f["storage_backend"] != "fs" {
		t.Errorf("storage_backend = %v", f["storage_backend"])
	}
}

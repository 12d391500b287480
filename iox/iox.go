// Package iox provides I/O helpers for resource cleanup.
package iox

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// DiscardClose closes c and discards the error.
// Use in defer statements on read-only handles where close errors are unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseInto closes c and stores the close error in *errp if no earlier
// error was recorded. Use on write handles, where a failed close can mean
// lost data:
//
//	defer iox.CloseInto(f, &err)
func CloseInto(c io.Closer, errp *error) {
	if cerr := c.Close(); cerr != nil && *errp == nil {
		*errp = cerr
	}
}

// RemoveIfExists deletes path, treating an already-missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

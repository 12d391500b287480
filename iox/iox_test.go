package iox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stubCloser struct {
	err    error
	closed bool
}

func (s *stubCloser) Close() error {
	s.closed = true
	return s.err
}

func TestDiscardClose(t *testing.T) {
	c := &stubCloser{err: errors.New("boom")}
	DiscardClose(c)
	if !c.closed {
		t.Error("expected Close to be called")
	}
}

func TestCloseInto(t *testing.T) {
	closeErr := errors.New("close failed")

	var err error
	CloseInto(&stubCloser{err: closeErr}, &err)
	if !errors.Is(err, closeErr) {
		t.Errorf("err = %v, want close error", err)
	}

	earlier := errors.New("write failed")
	err = earlier
	CloseInto(&stubCloser{err: closeErr}, &err)
	if !errors.Is(err, earlier) {
		t.Errorf("earlier error should win, got %v", err)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staged.array")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("RemoveIfExists: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	if err := RemoveIfExists(path); err != nil {
		t.Errorf("second remove should succeed, got %v", err)
	}
}

func TestRemoveIfExists_NonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "child"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(dir); err == nil {
		t.Error("expected error removing non-empty directory")
	}
}

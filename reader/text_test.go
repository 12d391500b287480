package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pithecene-io/numstore/errs"
)

func TestReadText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"utf-8 cyrillic", []byte("Привет"), "Привет"},
		{"windows-1251 cyrillic", []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}, "Привет"},
		{"empty", []byte{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "t.txt")
			if err := os.WriteFile(path, tt.data, 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := ReadText(path)
			if err != nil {
				t.Fatalf("ReadText: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadText_Missing(t *testing.T) {
	_, err := ReadText(filepath.Join(t.TempDir(), "gone.txt"))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

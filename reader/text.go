package reader

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/pithecene-io/numstore/errs"
)

// ReadText returns the content of the text file at path.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(err, "read_text", path)
	}
	s, err := DecodeText(data)
	if err != nil {
		return "", errs.New(errs.ErrDecode, "read_text", path, err)
	}
	return s, nil
}

// DecodeText decodes b as UTF-8, falling back to Windows-1251 for
// files written by older clients.
func DecodeText(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return "", errs.New(errs.ErrDecode, "decode_text", "", err)
	}
	// Bytes undefined in the code page decode to U+FFFD.
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", errs.Errorf(errs.ErrDecode, "decode_text", "", "content is neither UTF-8 nor Windows-1251")
	}
	return string(out), nil
}

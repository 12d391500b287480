package types

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the on-disk layout of a dataset.
type Kind string

const (
	KindArray  Kind = "array"
	KindMatrix Kind = "matrix"
	KindText   Kind = "text"
)

// Suffix returns the file suffix for the kind, including the dot.
func (k Kind) Suffix() string {
	switch k {
	case KindArray:
		return ".array"
	case KindMatrix:
		return ".matrix"
	case KindText:
		return ".txt"
	default:
		return ""
	}
}

// KindFromPath infers a dataset kind from a file name suffix.
func KindFromPath(path string) (Kind, error) {
	for _, k := range []Kind{KindArray, KindMatrix, KindText} {
		if strings.HasSuffix(path, k.Suffix()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("cannot infer dataset kind from %q", path)
}

// FormatVersion is the current descriptor format version.
// The dataset file layout itself is unversioned.
const FormatVersion = 1

// Descriptor is the sidecar record stored next to a dataset.
// It carries the element type that the file header cannot express.
type Descriptor struct {
	FormatVersion int         `msgpack:"format_version" json:"format_version"`
	Kind          Kind        `msgpack:"kind" json:"kind"`
	ElementType   ElementType `msgpack:"element_type,omitempty" json:"element_type,omitempty"`
	Length        uint64      `msgpack:"length,omitempty" json:"length,omitempty"`
	Rows          uint64      `msgpack:"rows,omitempty" json:"rows,omitempty"`
	Cols          uint64      `msgpack:"cols,omitempty" json:"cols,omitempty"`
	CreatedAt     time.Time   `msgpack:"created_at" json:"created_at"`
}

// Dataset is returned to the request layer after a dataset is created.
type Dataset struct {
	Key         string      `json:"key" yaml:"key" msgpack:"key"`
	Kind        Kind        `json:"kind" yaml:"kind" msgpack:"kind"`
	ElementType ElementType `json:"element_type,omitempty" yaml:"element_type,omitempty" msgpack:"element_type,omitempty"`
	Length      uint64      `json:"length,omitempty" yaml:"length,omitempty" msgpack:"length,omitempty"`
	Rows        uint64      `json:"rows,omitempty" yaml:"rows,omitempty" msgpack:"rows,omitempty"`
	Cols        uint64      `json:"cols,omitempty" yaml:"cols,omitempty" msgpack:"cols,omitempty"`
	Bytes       int64       `json:"bytes" yaml:"bytes" msgpack:"bytes"`
}

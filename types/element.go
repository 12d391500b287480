// Package types defines the core domain types for numstore datasets.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strings"
)

// ElementType is the closed set of numeric kinds a dataset can hold.
// The zero value is invalid.
type ElementType uint8

const (
	Int8 ElementType = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

// ElementTypes lists every valid element type in declaration order.
var ElementTypes = []ElementType{
	Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64, Float32, Float64,
}

var elementNames = [...]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

// elementAliases maps the historical C names used by request payloads.
var elementAliases = map[string]ElementType{
	"char":   Int8,
	"uchar":  Uint8,
	"byte":   Uint8,
	"short":  Int16,
	"ushort": Uint16,
	"int":    Int32,
	"uint":   Uint32,
	"long":   Int64,
	"ulong":  Uint64,
	"float":  Float32,
	"double": Float64,
}

// ParseElementType parses a canonical name (int32) or a C alias (int).
func ParseElementType(s string) (ElementType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range elementNames {
		if n != "" && n == name {
			return ElementType(i), nil
		}
	}
	if t, ok := elementAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown element type %q", s)
}

// Valid reports whether t is one of the ten element types.
func (t ElementType) Valid() bool {
	return t >= Int8 && t <= Float64
}

// String returns the canonical name, or "invalid(N)".
func (t ElementType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
	return elementNames[t]
}

// Width returns the encoded size in bytes, or 0 for an invalid type.
func (t ElementType) Width() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Bits returns Width()*8.
func (t ElementType) Bits() int { return t.Width() * 8 }

// IsFloat reports whether t is an IEEE-754 type.
func (t ElementType) IsFloat() bool { return t == Float32 || t == Float64 }

// IsSigned reports whether t is a signed integer type.
func (t ElementType) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (t ElementType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid element type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ElementType) UnmarshalText(b []byte) error {
	parsed, err := ParseElementType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

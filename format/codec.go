// Package format defines the on-disk layout of numstore array and matrix
// files and the mapping from element width/type to a decode routine.
//
// Array file:  [u64 width][u64 length][length × width bytes]
// Matrix file: [u64 width][u64 rows][u64 cols][rows·cols × width bytes, row-major]
//
// All integers are little-endian. The package performs no I/O beyond
// reading and writing headers on caller-supplied streams.
package format

import (
	"encoding/binary"
	"math"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/types"
)

// Number is the set of Go types backing the ten element types.
type Number interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// DecodeSpec is the fixed binary layout of one element.
type DecodeSpec struct {
	// Type is the element type values decode to.
	Type types.ElementType
	// Width is the encoded element size in bytes.
	Width int

	decode func(b []byte) any
}

// Decode decodes a single element from the first Width bytes of b.
func (s DecodeSpec) Decode(b []byte) any {
	return s.decode(b)
}

// DecodeAll decodes len(b)/Width consecutive elements.
func (s DecodeSpec) DecodeAll(b []byte) []any {
	n := len(b) / s.Width
	out := make([]any, n)
	for i := range n {
		out[i] = s.decode(b[i*s.Width:])
	}
	return out
}

var le = binary.LittleEndian

var specs = [...]DecodeSpec{
	types.Int8:    {Type: types.Int8, Width: 1, decode: func(b []byte) any { return int8(b[0]) }},
	types.Uint8:   {Type: types.Uint8, Width: 1, decode: func(b []byte) any { return b[0] }},
	types.Int16:   {Type: types.Int16, Width: 2, decode: func(b []byte) any { return int16(le.Uint16(b)) }},
	types.Uint16:  {Type: types.Uint16, Width: 2, decode: func(b []byte) any { return le.Uint16(b) }},
	types.Int32:   {Type: types.Int32, Width: 4, decode: func(b []byte) any { return int32(le.Uint32(b)) }},
	types.Uint32:  {Type: types.Uint32, Width: 4, decode: func(b []byte) any { return le.Uint32(b) }},
	types.Int64:   {Type: types.Int64, Width: 8, decode: func(b []byte) any { return int64(le.Uint64(b)) }},
	types.Uint64:  {Type: types.Uint64, Width: 8, decode: func(b []byte) any { return le.Uint64(b) }},
	types.Float32: {Type: types.Float32, Width: 4, decode: func(b []byte) any { return math.Float32frombits(le.Uint32(b)) }},
	types.Float64: {Type: types.Float64, Width: 8, decode: func(b []byte) any { return math.Float64frombits(le.Uint64(b)) }},
}

// SpecFor returns the exact decoder for t.
func SpecFor(t types.ElementType) (DecodeSpec, error) {
	if !t.Valid() {
		return DecodeSpec{}, errs.Errorf(errs.ErrUnsupportedType, "decode_format", "", "element type %d", uint8(t))
	}
	return specs[t], nil
}

// DecodeFormat maps a header width to its decoder.
//
// The header does not record signedness or float-ness, so widths are
// resolved the way existing files were always read: 1 → int8,
// 2 → int16, 4 → int32, 8 → float64. Use ResolveSpec with a type hint
// to read unsigned or float32/int64 data exactly.
func DecodeFormat(width uint64) (DecodeSpec, error) {
	switch width {
	case 1:
		return specs[types.Int8], nil
	case 2:
		return specs[types.Int16], nil
	case 4:
		return specs[types.Int32], nil
	case 8:
		return specs[types.Float64], nil
	default:
		return DecodeSpec{}, errs.Errorf(errs.ErrUnsupportedWidth, "decode_format", "", "width %d not in {1,2,4,8}", width)
	}
}

// ResolveSpec validates the header width and picks the decoder.
// A zero hint selects the legacy width mapping; a hint whose width
// disagrees with the header is rejected.
func ResolveSpec(width uint64, hint types.ElementType) (DecodeSpec, error) {
	legacy, err := DecodeFormat(width)
	if err != nil {
		return DecodeSpec{}, err
	}
	if hint == 0 {
		return legacy, nil
	}
	spec, err := SpecFor(hint)
	if err != nil {
		return DecodeSpec{}, err
	}
	if uint64(spec.Width) != width {
		return DecodeSpec{}, errs.Errorf(errs.ErrInvalidArgument, "decode_format", "",
			"element type %s has width %d, header declares %d", hint, spec.Width, width)
	}
	return spec, nil
}

// AppendValue appends the little-endian encoding of v to dst.
func AppendValue[T Number](dst []byte, v T) []byte {
	switch x := any(v).(type) {
	case int8:
		return append(dst, byte(x))
	case uint8:
		return append(dst, x)
	case int16:
		return le.AppendUint16(dst, uint16(x))
	case uint16:
		return le.AppendUint16(dst, x)
	case int32:
		return le.AppendUint32(dst, uint32(x))
	case uint32:
		return le.AppendUint32(dst, x)
	case int64:
		return le.AppendUint64(dst, uint64(x))
	case uint64:
		return le.AppendUint64(dst, x)
	case float32:
		return le.AppendUint32(dst, math.Float32bits(x))
	case float64:
		return le.AppendUint64(dst, math.Float64bits(x))
	}
	panic("unreachable")
}

// DecodeValue decodes a single T from the front of b.
func DecodeValue[T Number](b []byte) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return T(int8(b[0]))
	case uint8:
		return T(b[0])
	case int16:
		return T(int16(le.Uint16(b)))
	case uint16:
		return T(le.Uint16(b))
	case int32:
		return T(int32(le.Uint32(b)))
	case uint32:
		return T(le.Uint32(b))
	case int64:
		return T(int64(le.Uint64(b)))
	case uint64:
		return T(le.Uint64(b))
	case float32:
		return T(math.Float32frombits(le.Uint32(b)))
	case float64:
		return T(math.Float64frombits(le.Uint64(b)))
	}
	panic("unreachable")
}

package format

import (
	"fmt"
	"io"
	"math/bits"
)

// Kind selects between the array and matrix layouts.
type Kind int

const (
	Array Kind = iota
	Matrix
)

// Header sizes in bytes.
const (
	ArrayHeaderSize  = 16 // width + length
	MatrixHeaderSize = 24 // width + rows + cols
)

// HeaderSize returns the header size for the layout.
func HeaderSize(k Kind) int64 {
	if k == Matrix {
		return MatrixHeaderSize
	}
	return ArrayHeaderSize
}

// ArrayHeader is the fixed header of an array file.
type ArrayHeader struct {
	Width  uint64
	Length uint64
}

// Encode returns the 16-byte header.
func (h ArrayHeader) Encode() []byte {
	buf := make([]byte, 0, ArrayHeaderSize)
	buf = le.AppendUint64(buf, h.Width)
	buf = le.AppendUint64(buf, h.Length)
	return buf
}

// FileSize returns the total file size the header implies.
// ok is false if the size overflows int64.
func (h ArrayHeader) FileSize() (size int64, ok bool) {
	return fileSize(ArrayHeaderSize, h.Width, h.Length)
}

// ReadArrayHeader reads a 16-byte array header.
func ReadArrayHeader(r io.Reader) (ArrayHeader, error) {
	var buf [ArrayHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ArrayHeader{}, fmt.Errorf("read array header: %w", err)
	}
	return ArrayHeader{
		Width:  le.Uint64(buf[0:8]),
		Length: le.Uint64(buf[8:16]),
	}, nil
}

// MatrixHeader is the fixed header of a matrix file.
type MatrixHeader struct {
	Width uint64
	Rows  uint64
	Cols  uint64
}

// Encode returns the 24-byte header.
func (h MatrixHeader) Encode() []byte {
	buf := make([]byte, 0, MatrixHeaderSize)
	buf = le.AppendUint64(buf, h.Width)
	buf = le.AppendUint64(buf, h.Rows)
	buf = le.AppendUint64(buf, h.Cols)
	return buf
}

// Elements returns rows·cols. ok is false on overflow.
func (h MatrixHeader) Elements() (n uint64, ok bool) {
	hi, lo := bits.Mul64(h.Rows, h.Cols)
	return lo, hi == 0
}

// FileSize returns the total file size the header implies.
// ok is false if the size overflows int64.
func (h MatrixHeader) FileSize() (size int64, ok bool) {
	n, ok := h.Elements()
	if !ok {
		return 0, false
	}
	return fileSize(MatrixHeaderSize, h.Width, n)
}

// ReadMatrixHeader reads a 24-byte matrix header.
func ReadMatrixHeader(r io.Reader) (MatrixHeader, error) {
	var buf [MatrixHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return MatrixHeader{}, fmt.Errorf("read matrix header: %w", err)
	}
	return MatrixHeader{
		Width: le.Uint64(buf[0:8]),
		Rows:  le.Uint64(buf[8:16]),
		Cols:  le.Uint64(buf[16:24]),
	}, nil
}

func fileSize(header int64, width, count uint64) (int64, bool) {
	hi, data := bits.Mul64(width, count)
	if hi != 0 || data > uint64(1<<63-1-header) {
		return 0, false
	}
	return header + int64(data), true
}

// Package reader serves pages of array and matrix files without loading
// them into memory.
//
// Each call opens the file, validates the header against the file size,
// seeks to the requested window and decodes only the bytes it returns.
// Reads never modify the file.
package reader

import (
	"io"
	"os"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/format"
	"github.com/pithecene-io/numstore/iox"
	"github.com/pithecene-io/numstore/types"
)

// Option configures a read.
type Option func(*options)

type options struct {
	hint types.ElementType
}

// WithElementType decodes elements as t instead of the legacy width
// mapping. The header width must match t's width.
func WithElementType(t types.ElementType) Option {
	return func(o *options) { o.hint = t }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReadArrayPage returns page number page (1-based, clamped) of limit
// elements from the array file at path.
func ReadArrayPage(path string, page, limit int, opts ...Option) (*types.ArrayPage, error) {
	const op = "read_array"
	o := applyOptions(opts)
	if limit < 1 {
		return nil, errs.Errorf(errs.ErrInvalidArgument, op, path, "limit must be at least 1, got %d", limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, op, path)
	}
	defer iox.DiscardClose(f)

	h, err := format.ReadArrayHeader(f)
	if err != nil {
		return nil, errs.New(errs.ErrIO, op, path, err)
	}
	spec, err := format.ResolveSpec(h.Width, o.hint)
	if err != nil {
		return nil, errs.Wrap(err, op, path)
	}
	if err := checkSize(f, h.FileSize); err != nil {
		return nil, errs.Wrap(err, op, path)
	}

	w := paginate(h.Length, page, limit)
	out := &types.ArrayPage{
		Elements:      []any{},
		ElementType:   spec.Type,
		Page:          w.page,
		Limit:         limit,
		TotalPages:    w.pages,
		TotalElements: h.Length,
	}
	if w.count == 0 {
		return out, nil
	}

	width := uint64(spec.Width)
	offset := int64(format.ArrayHeaderSize + w.start*width)
	buf := make([]byte, w.count*width)
	if err := readAt(f, offset, buf); err != nil {
		return nil, errs.New(errs.ErrIO, op, path, err)
	}
	out.Elements = spec.DecodeAll(buf)
	return out, nil
}

// ReadMatrixPage returns the window selected by independent row and
// column pagination of the matrix file at path.
func ReadMatrixPage(path string, pageRow, limitRow, pageCol, limitCol int, opts ...Option) (*types.MatrixPage, error) {
	const op = "read_matrix"
	o := applyOptions(opts)
	if limitRow < 1 || limitCol < 1 {
		return nil, errs.Errorf(errs.ErrInvalidArgument, op, path,
			"limits must be at least 1, got rows=%d cols=%d", limitRow, limitCol)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, op, path)
	}
	defer iox.DiscardClose(f)

	h, err := format.ReadMatrixHeader(f)
	if err != nil {
		return nil, errs.New(errs.ErrIO, op, path, err)
	}
	spec, err := format.ResolveSpec(h.Width, o.hint)
	if err != nil {
		return nil, errs.Wrap(err, op, path)
	}
	if err := checkSize(f, h.FileSize); err != nil {
		return nil, errs.Wrap(err, op, path)
	}

	rw := paginate(h.Rows, pageRow, limitRow)
	cw := paginate(h.Cols, pageCol, limitCol)
	out := &types.MatrixPage{
		Elements:      [][]any{},
		ElementType:   spec.Type,
		PageRow:       rw.page,
		PageCol:       cw.page,
		LimitRow:      limitRow,
		LimitCol:      limitCol,
		TotalPagesRow: rw.pages,
		TotalPagesCol: cw.pages,
		TotalRows:     h.Rows,
		TotalCols:     h.Cols,
	}
	if rw.count == 0 || cw.count == 0 {
		return out, nil
	}

	width := uint64(spec.Width)
	rowStride := h.Cols * width
	rowBytes := cw.count * width
	out.Elements = make([][]any, 0, rw.count)

	// A window spanning whole rows is one contiguous region.
	if cw.count == h.Cols {
		buf := make([]byte, rw.count*rowBytes)
		offset := int64(format.MatrixHeaderSize + rw.start*rowStride)
		if err := readAt(f, offset, buf); err != nil {
			return nil, errs.New(errs.ErrIO, op, path, err)
		}
		for r := range rw.count {
			out.Elements = append(out.Elements, spec.DecodeAll(buf[r*rowBytes:(r+1)*rowBytes]))
		}
		return out, nil
	}

	buf := make([]byte, rowBytes)
	for r := range rw.count {
		offset := int64(format.MatrixHeaderSize + (rw.start+r)*rowStride + cw.start*width)
		if err := readAt(f, offset, buf); err != nil {
			return nil, errs.New(errs.ErrIO, op, path, err)
		}
		out.Elements = append(out.Elements, spec.DecodeAll(buf))
	}
	return out, nil
}

// checkSize fails when the header claims more bytes than the file holds.
func checkSize(f *os.File, want func() (int64, bool)) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	size, ok := want()
	if !ok {
		return errs.Errorf(errs.ErrIO, "check_size", "", "header size overflows")
	}
	if info.Size() < size {
		return errs.Errorf(errs.ErrIO, "check_size", "",
			"file holds %d bytes, header declares %d", info.Size(), size)
	}
	return nil
}

// readAt seeks to offset and fills buf.
func readAt(f *os.File, offset int64, buf []byte) error {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(f, buf)
	return err
}

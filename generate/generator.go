// Package generate creates array, matrix and text dataset files.
//
// Numeric files are filled either by independent uniform sampling within
// an inclusive range, or by an ordered pattern driven by start value,
// step and repeat interval. Files are written to a temporary sibling and
// renamed into place, so a failed generation never leaves a partial file.
package generate

import (
	"bufio"
	"math/bits"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/format"
	"github.com/pithecene-io/numstore/iox"
	"github.com/pithecene-io/numstore/types"
)

// bufferSize is the write buffer for streamed element output.
const bufferSize = 64 << 10

// Random parameterises uniform sampling. Min and Max are inclusive and
// parsed as Type, so they must lie within the type's range.
type Random struct {
	Type types.ElementType
	Min  string
	Max  string
}

// Ordered parameterises patterned filling. Consecutive groups of
// Interval elements share a value; the value grows by Step per group,
// beginning at Start.
type Ordered struct {
	Type     types.ElementType
	Pattern  types.FillPattern
	Start    string
	Step     string
	Interval uint64
}

// Generator writes dataset files.
// Safe for concurrent use; each call draws its own random stream.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New creates a Generator seeded from the runtime source unless WithSeed is given.
func New(opts ...Option) *Generator {
	g := &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// child derives an independent random stream for one call.
func (g *Generator) child() *rand.Rand {
	g.mu.Lock()
	defer g.mu.Unlock()
	return rand.New(rand.NewPCG(g.rng.Uint64(), g.rng.Uint64()))
}

// RandomArray writes count uniformly sampled values and returns the
// path with ".array" appended.
func (g *Generator) RandomArray(path string, count uint64, p Random) (string, error) {
	return g.run(plan{
		op:     "generate_random_array",
		path:   path,
		kind:   types.KindArray,
		et:     p.Type,
		count:  count,
		header: arrayHeader(p.Type, count),
		random: &p,
	})
}

// OrderedArray writes count patterned values and returns the path with
// ".array" appended.
func (g *Generator) OrderedArray(path string, count uint64, p Ordered) (string, error) {
	return g.run(plan{
		op:      "generate_ordered_array",
		path:    path,
		kind:    types.KindArray,
		et:      p.Type,
		count:   count,
		header:  arrayHeader(p.Type, count),
		ordered: &p,
	})
}

// RandomMatrix writes rows·cols uniformly sampled values row-major and
// returns the path with ".matrix" appended.
func (g *Generator) RandomMatrix(path string, rows, cols uint64, p Random) (string, error) {
	count, err := matrixCount("generate_random_matrix", rows, cols)
	if err != nil {
		return "", err
	}
	return g.run(plan{
		op:     "generate_random_matrix",
		path:   path,
		kind:   types.KindMatrix,
		et:     p.Type,
		count:  count,
		header: matrixHeader(p.Type, rows, cols),
		random: &p,
	})
}

// OrderedMatrix writes rows·cols patterned values row-major and returns
// the path with ".matrix" appended.
func (g *Generator) OrderedMatrix(path string, rows, cols uint64, p Ordered) (string, error) {
	count, err := matrixCount("generate_ordered_matrix", rows, cols)
	if err != nil {
		return "", err
	}
	return g.run(plan{
		op:      "generate_ordered_matrix",
		path:    path,
		kind:    types.KindMatrix,
		et:      p.Type,
		count:   count,
		header:  matrixHeader(p.Type, rows, cols),
		ordered: &p,
	})
}

// Text writes content as raw UTF-8 and returns the path with ".txt" appended.
func (g *Generator) Text(path, content string) (string, error) {
	if path == "" {
		return "", errs.Errorf(errs.ErrInvalidArgument, "generate_text", "", "empty path")
	}
	if !utf8.ValidString(content) {
		return "", errs.Errorf(errs.ErrInvalidArgument, "generate_text", path, "content is not valid UTF-8")
	}
	out := WithSuffix(path, types.KindText)
	err := writeAtomic(out, func(w *bufio.Writer) error {
		_, err := w.WriteString(content)
		return err
	})
	if err != nil {
		return "", errs.Wrap(err, "generate_text", out)
	}
	return out, nil
}

// WithSuffix appends the kind's suffix unless path already ends with it.
func WithSuffix(path string, kind types.Kind) string {
	suffix := kind.Suffix()
	if strings.HasSuffix(path, suffix) {
		return path
	}
	return path + suffix
}

// plan describes one numeric generation.
type plan struct {
	op      string
	path    string
	kind    types.Kind
	et      types.ElementType
	count   uint64
	header  []byte
	random  *Random
	ordered *Ordered
}

// run resolves the element type once and hands off to the typed writer.
// Nothing touches the filesystem until the type and parameters are valid.
func (g *Generator) run(p plan) (string, error) {
	if p.path == "" {
		return "", errs.Errorf(errs.ErrInvalidArgument, p.op, "", "empty path")
	}
	switch p.et {
	case types.Int8:
		return execute[int8](g, p)
	case types.Uint8:
		return execute[uint8](g, p)
	case types.Int16:
		return execute[int16](g, p)
	case types.Uint16:
		return execute[uint16](g, p)
	case types.Int32:
		return execute[int32](g, p)
	case types.Uint32:
		return execute[uint32](g, p)
	case types.Int64:
		return execute[int64](g, p)
	case types.Uint64:
		return execute[uint64](g, p)
	case types.Float32:
		return execute[float32](g, p)
	case types.Float64:
		return execute[float64](g, p)
	default:
		return "", errs.Errorf(errs.ErrUnsupportedType, p.op, p.path, "element type %d", uint8(p.et))
	}
}

func execute[T format.Number](g *Generator, p plan) (string, error) {
	var (
		next func(i uint64) T
		err  error
	)
	if p.random != nil {
		next, err = randomSequence[T](g.child(), p.et, *p.random)
	} else {
		next, err = orderedSequence[T](g.child(), p.et, p.count, *p.ordered)
	}
	if err != nil {
		return "", errs.Wrap(err, p.op, p.path)
	}

	out := WithSuffix(p.path, p.kind)
	err = writeAtomic(out, func(w *bufio.Writer) error {
		if _, err := w.Write(p.header); err != nil {
			return err
		}
		buf := make([]byte, 0, 8)
		for i := uint64(0); i < p.count; i++ {
			buf = format.AppendValue(buf[:0], next(i))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", errs.Wrap(err, p.op, out)
	}
	return out, nil
}

// writeAtomic fills a temporary sibling of path and renames it into place.
// The temporary is removed on every failure path, including panics in fill.
func writeAtomic(path string, fill func(w *bufio.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = iox.RemoveIfExists(tmp)
		}
	}()

	if err := func() (err error) {
		defer iox.CloseInto(f, &err)
		w := bufio.NewWriterSize(f, bufferSize)
		if err := fill(w); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return f.Chmod(0o644)
	}(); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	committed = true
	return nil
}

func arrayHeader(et types.ElementType, count uint64) []byte {
	return format.ArrayHeader{Width: uint64(et.Width()), Length: count}.Encode()
}

func matrixHeader(et types.ElementType, rows, cols uint64) []byte {
	return format.MatrixHeader{Width: uint64(et.Width()), Rows: rows, Cols: cols}.Encode()
}

func matrixCount(op string, rows, cols uint64) (uint64, error) {
	hi, n := bits.Mul64(rows, cols)
	if hi != 0 {
		return 0, errs.Errorf(errs.ErrInvalidArgument, op, "", "rows·cols overflows (%d × %d)", rows, cols)
	}
	return n, nil
}

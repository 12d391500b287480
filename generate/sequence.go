package generate

import (
	"math"
	"math/rand/v2"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/format"
	"github.com/pithecene-io/numstore/types"
)

// randomSequence returns a sampler producing values uniformly in [min, max].
func randomSequence[T format.Number](rng *rand.Rand, et types.ElementType, p Random) (func(uint64) T, error) {
	lo, err := format.ParseValue[T](et, p.Min)
	if err != nil {
		return nil, err
	}
	hi, err := format.ParseValue[T](et, p.Max)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, errs.Errorf(errs.ErrInvalidArgument, "generate", "", "min %s exceeds max %s", p.Min, p.Max)
	}

	switch {
	case et.IsFloat():
		l, h := float64(lo), float64(hi)
		return func(uint64) T {
			u := rng.Float64()
			v := l*(1-u) + h*u
			return T(min(max(v, l), h))
		}, nil
	case et.IsSigned():
		l := int64(lo)
		span := uint64(int64(hi)) - uint64(l)
		return func(uint64) T {
			return T(l + int64(draw(rng, span)))
		}, nil
	default:
		l := uint64(lo)
		span := uint64(hi) - l
		return func(uint64) T {
			return T(l + draw(rng, span))
		}, nil
	}
}

// draw returns a uniform value in [0, span].
func draw(rng *rand.Rand, span uint64) uint64 {
	if span == math.MaxUint64 {
		return rng.Uint64()
	}
	return rng.Uint64N(span + 1)
}

// orderedSequence returns a generator for the patterned fill. The value at
// ascending index k is start + (k / interval)·step. Integer arithmetic
// wraps at the type's width.
func orderedSequence[T format.Number](rng *rand.Rand, et types.ElementType, count uint64, p Ordered) (func(uint64) T, error) {
	start, err := format.ParseValue[T](et, p.Start)
	if err != nil {
		return nil, err
	}
	step, err := format.ParseValue[T](et, p.Step)
	if err != nil {
		return nil, err
	}
	if p.Interval < 1 {
		return nil, errs.Errorf(errs.ErrInvalidArgument, "generate", "", "interval must be at least 1")
	}
	interval := p.Interval

	value := func(k uint64) T {
		return start + T(k/interval)*step
	}

	switch p.Pattern {
	case types.Ascending, "":
		return value, nil
	case types.Descending:
		return func(i uint64) T { return value(count - 1 - i) }, nil
	case types.Shuffled:
		if count > math.MaxInt {
			return nil, errs.Errorf(errs.ErrInvalidArgument, "generate", "", "count %d too large to shuffle", count)
		}
		values := make([]T, int(count))
		for k := range values {
			values[k] = value(uint64(k))
		}
		rng.Shuffle(len(values), func(i, j int) {
			values[i], values[j] = values[j], values[i]
		})
		return func(i uint64) T { return values[i] }, nil
	default:
		return nil, errs.Errorf(errs.ErrInvalidArgument, "generate", "", "unknown fill pattern %q", p.Pattern)
	}
}

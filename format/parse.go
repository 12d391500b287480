package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/types"
)

// ParseValue parses a textual request value as element type t, honouring
// the type's range. T must be the Go type backing t.
// Integers accept base prefixes (0x, 0o, 0b); floats must be finite.
func ParseValue[T Number](t types.ElementType, s string) (T, error) {
	s = strings.TrimSpace(s)
	switch {
	case t.IsFloat():
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return 0, errs.Errorf(errs.ErrInvalidArgument, "parse_value", "", "%s value %q: %v", t, s, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errs.Errorf(errs.ErrInvalidArgument, "parse_value", "", "%s value %q is not finite", t, s)
		}
		return T(f), nil
	case t.IsSigned():
		i, err := strconv.ParseInt(s, 0, t.Bits())
		if err != nil {
			return 0, errs.Errorf(errs.ErrInvalidArgument, "parse_value", "", "%s value %q: %v", t, s, err)
		}
		return T(i), nil
	case t.Valid():
		u, err := strconv.ParseUint(s, 0, t.Bits())
		if err != nil {
			return 0, errs.Errorf(errs.ErrInvalidArgument, "parse_value", "", "%s value %q: %v", t, s, err)
		}
		return T(u), nil
	default:
		return 0, errs.Errorf(errs.ErrUnsupportedType, "parse_value", "", "element type %d", uint8(t))
	}
}

package calls

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType reports a value outside the scalar set the store
// accepts: string, []byte, int, int32, int64, float32, float64.
var ErrUnsupportedType = errors.New("calls: unsupported value type")

// EncodeValue converts an allowed scalar to its stored byte form, the
// representation the reference backend uses: strings and byte slices
// raw, integers as base-10 text, floats in the shortest form that
// parses back to the same value. Anything else fails with
// ErrUnsupportedType; nothing is coerced.
func EncodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return []byte(val), nil
	case []byte:
		return val, nil
	case int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, val, 'g', -1, 64), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// FormatArgs renders positional arguments as a tuple literal for the
// input log:
//
//	()            no arguments
//	('foo',)      one argument, trailing comma
//	(123, 4.5)    several arguments
//
// This is the pinned wire format of recorded inputs; replay prints the
// stored text verbatim. Unlike EncodeValue, rendering never fails:
// arguments are recorded before the wrapped operation validates them,
// so a value of an unsupported type still needs a readable form.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = FormatScalar(arg)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FormatScalar renders one value the way FormatArgs renders a tuple
// element: strings single-quoted, byte slices as b'...', numbers bare.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return quoteArg(val)
	case []byte:
		return "b" + quoteArg(string(val))
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quoteArg single-quotes s, escaping backslashes and single quotes.
func quoteArg(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

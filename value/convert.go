package value

import "math"

// ConvertTo attempts to convert v to the requested kind, failing (returning
// false) when the source cannot represent the target exactly. Conversions
// between numeric kinds are range/precision checked; there is no implicit
// widening or narrowing that loses information. Apart from the identity
// conversion, only integer and float sources convert, and only to KindInt64,
// KindUint64 or KindFloat64; a float source never converts to an integer
// kind, even when its value is integral.
func (v Value) ConvertTo(target Kind) (Value, bool) {
	if v.kind == target {
		return v, true
	}
	switch target {
	case KindInt64:
		if n, ok := v.exactInt64(); ok {
			return Int64(n), true
		}
	case KindUint64:
		if n, ok := v.exactUint64(); ok {
			return Uint64(n), true
		}
	case KindFloat64:
		if f, ok := v.exactFloat64(); ok {
			return Float64(f), true
		}
	}
	return Value{}, false
}

func (v Value) exactInt64() (int64, bool) {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, _ := v.Int64()
		return n, true
	case KindUint8, KindUint16, KindUint32:
		n, _ := v.Uint64()
		return int64(n), true
	case KindUint64:
		n, _ := v.Uint64()
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func (v Value) exactUint64() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		n, _ := v.Uint64()
		return n, true
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, _ := v.Int64()
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func (v Value) exactFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat32, KindFloat64:
		f, _ := v.Float64()
		return f, true
	case KindInt8, KindInt16, KindInt32:
		n, _ := v.Int64()
		return float64(n), true
	case KindInt64:
		n, _ := v.Int64()
		if int64(float64(n)) != n {
			return 0, false
		}
		return float64(n), true
	case KindUint8, KindUint16, KindUint32:
		n, _ := v.Uint64()
		return float64(n), true
	case KindUint64:
		n, _ := v.Uint64()
		if uint64(float64(n)) != n {
			return 0, false
		}
		return float64(n), true
	default:
		return 0, false
	}
}

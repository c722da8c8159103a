// Package value implements the tagged scalar+composite value union shared by
// the rolling-file storage and runtime engine components of the MSR runtime.
package value

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies the concrete type carried by a [Value].
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindDuration
	KindString
	KindBytes
)

// String returns a lower-case name for the kind, used in error messages and
// record formatting.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDuration:
		return "duration"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// Value is a tagged union over the scalar and composite types a register or
// rule source may carry. The zero Value is KindInvalid, and is never
// produced by the constructors below.
//
// The scalar subset (everything except String and Bytes) is allocation-free
// and safe to construct/copy in real-time contexts; String and Bytes carry
// a backing array and may allocate.
type Value struct {
	kind Kind
	num  uint64 // bit pattern for bool/ints/floats/duration
	str  string
	bin  []byte
}

// Bool constructs a boolean Value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int8 constructs a signed 8-bit integer Value.
func Int8(v int8) Value { return Value{kind: KindInt8, num: uint64(uint8(v))} }

// Int16 constructs a signed 16-bit integer Value.
func Int16(v int16) Value { return Value{kind: KindInt16, num: uint64(uint16(v))} }

// Int32 constructs a signed 32-bit integer Value.
func Int32(v int32) Value { return Value{kind: KindInt32, num: uint64(uint32(v))} }

// Int64 constructs a signed 64-bit integer Value.
func Int64(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

// Uint8 constructs an unsigned 8-bit integer Value.
func Uint8(v uint8) Value { return Value{kind: KindUint8, num: uint64(v)} }

// Uint16 constructs an unsigned 16-bit integer Value.
func Uint16(v uint16) Value { return Value{kind: KindUint16, num: uint64(v)} }

// Uint32 constructs an unsigned 32-bit integer Value.
func Uint32(v uint32) Value { return Value{kind: KindUint32, num: uint64(v)} }

// Uint64 constructs an unsigned 64-bit integer Value.
func Uint64(v uint64) Value { return Value{kind: KindUint64, num: v} }

// Float32 constructs a 32-bit floating point Value.
func Float32(v float32) Value { return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))} }

// Float64 constructs a 64-bit floating point Value.
func Float64(v float64) Value { return Value{kind: KindFloat64, num: math.Float64bits(v)} }

// Duration constructs a nanosecond-precision duration Value.
func Duration(v time.Duration) Value { return Value{kind: KindDuration, num: uint64(v)} }

// String constructs a string Value. Not allocation-free.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Bytes constructs a variable-length octet-sequence Value. Not
// allocation-free; ownership of b passes to the Value (not copied).
func Bytes(b []byte) Value { return Value{kind: KindBytes, bin: b} }

// Kind returns the tag carried by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v carries a concrete type.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Bool returns the boolean payload and true, iff v.Kind() == KindBool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

// Int64 returns the payload as int64 and true, iff v carries a signed
// integer kind exactly representable as int64 (always true for Int8..Int64).
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt8:
		return int64(int8(v.num)), true
	case KindInt16:
		return int64(int16(v.num)), true
	case KindInt32:
		return int64(int32(v.num)), true
	case KindInt64:
		return int64(v.num), true
	default:
		return 0, false
	}
}

// Uint64 returns the payload as uint64 and true, iff v carries an unsigned
// integer kind.
func (v Value) Uint64() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.num, true
	default:
		return 0, false
	}
}

// Float64 returns the payload as float64 and true, iff v carries a
// floating-point kind.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat32:
		return float64(math.Float32frombits(uint32(v.num))), true
	case KindFloat64:
		return math.Float64frombits(v.num), true
	default:
		return 0, false
	}
}

// Duration returns the payload as a time.Duration and true, iff
// v.Kind() == KindDuration.
func (v Value) Duration() (time.Duration, bool) {
	if v.kind != KindDuration {
		return 0, false
	}
	return time.Duration(v.num), true
}

// String returns the payload and true, iff v.Kind() == KindString.
func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Bytes returns the payload and true, iff v.Kind() == KindBytes. The
// returned slice aliases the Value's backing array.
func (v Value) Bytes() (b []byte, ok bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bin, true
}

// Equal reports whether v and other carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindBytes:
		if len(v.bin) != len(other.bin) {
			return false
		}
		for i := range v.bin {
			if v.bin[i] != other.bin[i] {
				return false
			}
		}
		return true
	case KindInvalid:
		return true
	default:
		return v.num == other.num
	}
}

// GoString renders v for debugging; it does not attempt exact round-trip
// formatting of floats (see the storage package for that).
func (v Value) GoString() string {
	switch v.kind {
	case KindInvalid:
		return "value.Value(invalid)"
	case KindBool:
		b, _ := v.Bool()
		return fmt.Sprintf("value.Bool(%v)", b)
	case KindString:
		return fmt.Sprintf("value.String(%q)", v.str)
	case KindBytes:
		return fmt.Sprintf("value.Bytes(%v)", v.bin)
	case KindDuration:
		d, _ := v.Duration()
		return fmt.Sprintf("value.Duration(%v)", d)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, _ := v.Int64()
		return fmt.Sprintf("value.%s(%d)", v.kind, n)
	case KindFloat32, KindFloat64:
		f, _ := v.Float64()
		return fmt.Sprintf("value.%s(%v)", v.kind, f)
	default:
		return fmt.Sprintf("value.%s(%v)", v.kind, v.num)
	}
}

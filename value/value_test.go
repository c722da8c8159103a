package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsRoundTripThroughTheirAccessor(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"bool true", Bool(true), KindBool},
		{"bool false", Bool(false), KindBool},
		{"int8", Int8(-12), KindInt8},
		{"int16", Int16(-1234), KindInt16},
		{"int32", Int32(-123456), KindInt32},
		{"int64", Int64(-123456789), KindInt64},
		{"uint8", Uint8(200), KindUint8},
		{"uint16", Uint16(60000), KindUint16},
		{"uint32", Uint32(4000000000), KindUint32},
		{"uint64", Uint64(18000000000000000000), KindUint64},
		{"float32", Float32(1.5), KindFloat32},
		{"float64", Float64(3.25), KindFloat64},
		{"duration", Duration(5 * time.Second), KindDuration},
		{"string", String("hello"), KindString},
		{"bytes", Bytes([]byte{1, 2, 3}), KindBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.True(t, tt.v.IsValid())
		})
	}
}

func TestZeroValueIsInvalid(t *testing.T) {
	var v Value
	assert.False(t, v.IsValid())
	assert.Equal(t, KindInvalid, v.Kind())
}

func TestAccessorsRejectWrongKind(t *testing.T) {
	v := Bool(true)

	_, ok := v.Int64()
	assert.False(t, ok)
	_, ok = v.Uint64()
	assert.False(t, ok)
	_, ok = v.Float64()
	assert.False(t, ok)
	_, ok = v.Duration()
	assert.False(t, ok)
	_, ok = v.String()
	assert.False(t, ok)
	_, ok = v.Bytes()
	assert.False(t, ok)

	b, ok := v.Bool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestInt64AcceptsEverySignedWidth(t *testing.T) {
	tests := []struct {
		v    Value
		want int64
	}{
		{Int8(-1), -1},
		{Int16(-1), -1},
		{Int32(-1), -1},
		{Int64(-1), -1},
	}
	for _, tt := range tests {
		got, ok := tt.v.Int64()
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
	}
}

func TestFloat32RoundTripsThroughFloat64Accessor(t *testing.T) {
	v := Float32(2.5)
	got, ok := v.Float64()
	assert.True(t, ok)
	assert.Equal(t, 2.5, got)
}

func TestEqual(t *testing.T) {
	assert.True(t, Bool(true).Equal(Bool(true)))
	assert.False(t, Bool(true).Equal(Bool(false)))
	assert.False(t, Bool(true).Equal(Int64(1)))

	assert.True(t, String("a").Equal(String("a")))
	assert.False(t, String("a").Equal(String("b")))

	assert.True(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 2})))
	assert.False(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 3})))
	assert.False(t, Bytes([]byte{1}).Equal(Bytes([]byte{1, 2})))

	assert.True(t, Value{}.Equal(Value{}))
}

func TestBytesAliasesBackingArray(t *testing.T) {
	raw := []byte{1, 2, 3}
	v := Bytes(raw)
	got, ok := v.Bytes()
	assert.True(t, ok)
	raw[0] = 99
	assert.Equal(t, byte(99), got[0], "Bytes does not copy its backing array")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "bool", KindBool.String())
	assert.Equal(t, "duration", KindDuration.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "invalid", Kind(255).String())
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "value.Value(invalid)", Value{}.GoString())
	assert.Equal(t, "value.Bool(true)", Bool(true).GoString())
	assert.Equal(t, `value.String("hi")`, String("hi").GoString())
}

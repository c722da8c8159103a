package msrerr

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInvalidError(t *testing.T) {
	err := &ConfigInvalidError{Message: "bad shape", Cause: io.EOF}
	assert.Equal(t, "bad shape", err.Error())
	assert.True(t, errors.Is(err, io.EOF))

	empty := &ConfigInvalidError{}
	assert.Equal(t, "config invalid", empty.Error())
	assert.Nil(t, empty.Unwrap())
}

func TestStateInvalidError(t *testing.T) {
	err := &StateInvalidError{Message: "bad transition"}
	assert.Equal(t, "bad transition", err.Error())

	empty := &StateInvalidError{}
	assert.Equal(t, "state invalid", empty.Error())
}

func TestIoTransientError(t *testing.T) {
	err := &IoTransientError{Cause: io.ErrClosedPipe}
	assert.Equal(t, "transient I/O error", err.Error())
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}

func TestIoRepeatedOsError(t *testing.T) {
	err := &IoRepeatedOsError{Code: 5, Cause: io.EOF}
	assert.Equal(t, "repeated OS error (code 5)", err.Error())
	assert.True(t, errors.Is(err, io.EOF))
}

func TestFormatInvalidError(t *testing.T) {
	err := &FormatInvalidError{Message: "bad column count"}
	assert.Equal(t, "bad column count", err.Error())

	empty := &FormatInvalidError{}
	assert.Equal(t, "format invalid", empty.Error())
}

func TestLookupMissingError(t *testing.T) {
	err := &LookupMissingError{Name: "sensor.temp"}
	assert.Equal(t, `lookup missing: "sensor.temp"`, err.Error())

	withMessage := &LookupMissingError{Name: "sensor.temp", Message: "rule references missing input"}
	assert.Equal(t, "rule references missing input", withMessage.Error())
}

func TestAggregateError(t *testing.T) {
	agg := &Aggregate{}
	assert.Equal(t, "no errors", agg.Error())
	assert.Equal(t, 0, agg.Len())
	assert.Nil(t, agg.ErrOrNil())

	agg.Add(nil) // no-op
	assert.Equal(t, 0, agg.Len())

	agg.Add(io.EOF)
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, "EOF", agg.Error())
	require.NotNil(t, agg.ErrOrNil())

	agg.Add(io.ErrClosedPipe)
	assert.Equal(t, 2, agg.Len())
	assert.Equal(t, "2 errors, first: EOF", agg.Error())
}

func TestAggregateUnwrap(t *testing.T) {
	agg := &Aggregate{Causes: []error{io.EOF, io.ErrClosedPipe}}

	unwrapped := agg.Unwrap()
	require.Len(t, unwrapped, 2)
	assert.Equal(t, io.EOF, unwrapped[0])
	assert.Equal(t, io.ErrClosedPipe, unwrapped[1])

	assert.True(t, errors.Is(agg, io.EOF))
	assert.True(t, errors.Is(agg, io.ErrClosedPipe))
	assert.False(t, errors.Is(agg, io.ErrUnexpectedEOF))
}

func TestAggregateIs(t *testing.T) {
	agg := &Aggregate{Causes: []error{io.EOF}}

	var target *Aggregate
	assert.True(t, errors.As(error(agg), &target))
	assert.True(t, agg.Is(&Aggregate{}))
	assert.False(t, agg.Is(io.EOF))
}

func TestAggregateErrOrNilOnNilReceiver(t *testing.T) {
	var agg *Aggregate
	assert.Nil(t, agg.ErrOrNil())
}

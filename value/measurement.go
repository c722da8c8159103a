package value

import "time"

// Measurement pairs a monotonic instant with an optional value. A zero
// Measurement's Value is absent, modelling "not yet sampled".
type Measurement[V any] struct {
	At      time.Time
	Value   V
	Present bool
}

// NewMeasurement constructs a present Measurement.
func NewMeasurement[V any](at time.Time, v V) Measurement[V] {
	return Measurement[V]{At: at, Value: v, Present: true}
}

// Absent constructs a Measurement with no value, at the given instant.
func Absent[V any](at time.Time) Measurement[V] {
	return Measurement[V]{At: at}
}

// Get returns the value and whether it is present.
func (m Measurement[V]) Get() (V, bool) {
	return m.Value, m.Present
}

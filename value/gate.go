package value

// IoGate conditions a raw register reading before it is admitted as an
// observed Value: cropping first, then linear range mapping. A RegisterSpec
// attaches at most one IoGate, applied by RegisterGroup.ApplyGates.
type IoGate struct {
	ID       string
	Mapping  *ValueMapping
	Cropping *Cropping
}

// ValueMapping re-maps a number from one range to another, linearly. A value
// of From.Low maps to To.Low, From.High to To.High, and values in between to
// values in between.
type ValueMapping struct {
	From ValueBounds
	To   ValueBounds
}

// ValueBounds are the low/high bounds of a value's range.
type ValueBounds struct {
	Low, High float64
}

// Map re-maps x from m.From to m.To.
func (m ValueMapping) Map(x float64) float64 {
	scale := (m.To.High - m.To.Low) / (m.From.High - m.From.Low)
	return (x-m.From.Low)*scale + m.To.Low
}

// Cropping clamps a value to an optional low/high threshold.
type Cropping struct {
	Low, High *float64
}

// Apply clamps x to c's bounds.
func (c Cropping) Apply(x float64) float64 {
	if c.High != nil && x > *c.High {
		x = *c.High
	}
	if c.Low != nil && x < *c.Low {
		x = *c.Low
	}
	return x
}

// ApplyGate conditions a raw value through an IoGate: cropping, then
// mapping, each optional.
func ApplyGate(gate IoGate, raw float64) float64 {
	v := raw
	if gate.Cropping != nil {
		v = gate.Cropping.Apply(v)
	}
	if gate.Mapping != nil {
		v = gate.Mapping.Map(v)
	}
	return v
}

package storage

import "github.com/slowtec/msr/value"

// Codec tells a Storage[R] how to turn one record's type-specific columns
// into text fields and back. It is a plain pair of functions rather than an
// interface method set because RegisterRecord's Unmarshal needs the register
// group's configured types, which aren't recoverable from the text alone.
type Codec[R any] struct {
	Marshal   func(R) []string
	Unmarshal func([]string) (R, error)
}

// NewEventJournalCodec returns the Codec for EventJournalRecord storage.
func NewEventJournalCodec() Codec[EventJournalRecord] {
	return Codec[EventJournalRecord]{
		Marshal: EventJournalRecord.MarshalFields,
		Unmarshal: func(fields []string) (EventJournalRecord, error) {
			var r EventJournalRecord
			err := r.UnmarshalFields(fields)
			return r, err
		},
	}
}

// NewRegisterCodec returns the Codec for RegisterRecord storage bound to a
// fixed column type sequence (one per configured register).
func NewRegisterCodec(types []value.Kind) Codec[RegisterRecord] {
	cp := append([]value.Kind(nil), types...)
	return Codec[RegisterRecord]{
		Marshal: RegisterRecord.MarshalFields,
		Unmarshal: func(fields []string) (RegisterRecord, error) {
			return UnmarshalRegisterFields(fields, cp)
		},
	}
}

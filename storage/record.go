package storage

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/slowtec/msr/floater"
	"github.com/slowtec/msr/msrerr"
	"github.com/slowtec/msr/value"
)

// Severity is the event journal's eight-level severity taxonomy (spec
// section 6).
type Severity int

const (
	DiagnosticVerbose Severity = iota + 1
	Diagnostic
	InformationVerbose
	Information
	Warning
	WarningUnexpected
	Error
	ErrorCritical
)

func (s Severity) String() string {
	switch s {
	case DiagnosticVerbose:
		return "diagnostic_verbose"
	case Diagnostic:
		return "diagnostic"
	case InformationVerbose:
		return "information_verbose"
	case Information:
		return "information"
	case Warning:
		return "warning"
	case WarningUnexpected:
		return "warning_unexpected"
	case Error:
		return "error"
	case ErrorCritical:
		return "error_critical"
	default:
		return "unknown"
	}
}

// EventJournalRecord is an incident/diagnostic entry: occurrence time,
// severity, a named scope, a numeric code, a UUID (base58-encoded in the
// file), and optional free-text/structured-data columns.
type EventJournalRecord struct {
	OccurredAt time.Time
	Severity   Severity
	Scope      string
	Code       int32
	ID         uuid.UUID
	Text       string // empty means absent
	Data       string // stringified payload; empty means absent
}

func (r EventJournalRecord) MarshalFields() []string {
	return []string{
		r.OccurredAt.UTC().Format(time.RFC3339Nano),
		strconv.Itoa(int(r.Severity)),
		r.Scope,
		strconv.FormatInt(int64(r.Code), 10),
		base58.Encode(r.ID[:]),
		r.Text,
		r.Data,
	}
}

func (r *EventJournalRecord) UnmarshalFields(fields []string) error {
	if len(fields) != 7 {
		return &msrerr.FormatInvalidError{
			Message: fmt.Sprintf("event journal record: expected 7 columns, got %d", len(fields)),
		}
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return &msrerr.FormatInvalidError{Message: "event journal record: occurred_at", Cause: err}
	}
	severity, err := strconv.Atoi(fields[1])
	if err != nil || severity < int(DiagnosticVerbose) || severity > int(ErrorCritical) {
		return &msrerr.FormatInvalidError{Message: "event journal record: severity out of range"}
	}
	code, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return &msrerr.FormatInvalidError{Message: "event journal record: code", Cause: err}
	}
	idBytes, err := base58.Decode(fields[4])
	if err != nil || len(idBytes) != 16 {
		return &msrerr.FormatInvalidError{Message: "event journal record: id", Cause: err}
	}
	var id uuid.UUID
	copy(id[:], idBytes)

	r.OccurredAt = occurredAt
	r.Severity = Severity(severity)
	r.Scope = fields[2]
	r.Code = int32(code)
	r.ID = id
	r.Text = fields[5]
	r.Data = fields[6]
	return nil
}

// RegisterRecord is one observation: a wall-clock timestamp plus one column
// per configured register index, formatted per its scalar type or empty for
// absent.
type RegisterRecord struct {
	ObservedAt time.Time
	Values     []value.Option
}

func (r RegisterRecord) MarshalFields() []string {
	out := make([]string, 0, 1+len(r.Values))
	out = append(out, r.ObservedAt.UTC().Format(time.RFC3339Nano))
	for _, opt := range r.Values {
		if !opt.Present {
			out = append(out, "")
			continue
		}
		out = append(out, formatValue(opt.Value))
	}
	return out
}

// UnmarshalRegisterFields is like UnmarshalFields, but the caller supplies
// the register group's types (not recoverable from the text alone - an
// empty column is ambiguous between "absent" and "absent of any type").
func UnmarshalRegisterFields(fields []string, types []value.Kind) (RegisterRecord, error) {
	if len(fields) != len(types)+1 {
		return RegisterRecord{}, &msrerr.FormatInvalidError{
			Message: fmt.Sprintf(
				"register record: expected %d columns, got %d", len(types)+1, len(fields),
			),
		}
	}
	observedAt, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return RegisterRecord{}, &msrerr.FormatInvalidError{Message: "register record: observed_at", Cause: err}
	}
	values := make([]value.Option, len(types))
	for i, kind := range types {
		col := fields[i+1]
		if col == "" {
			values[i] = value.None()
			continue
		}
		v, err := parseValue(kind, col)
		if err != nil {
			return RegisterRecord{}, &msrerr.FormatInvalidError{
				Message: fmt.Sprintf("register record: column %d", i), Cause: err,
			}
		}
		values[i] = value.Some(v)
	}
	return RegisterRecord{ObservedAt: observedAt, Values: values}, nil
}

// formatValue renders a scalar Value for a record column. Floats go through
// floater for an exact, round-trippable decimal rendering rather than
// Go's shortest-round-trip strconv.FormatFloat, matching the "see the
// storage package" note on value.Value.GoString.
func formatValue(v value.Value) string {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b)
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		n, _ := v.Int64()
		return strconv.FormatInt(n, 10)
	case value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64:
		n, _ := v.Uint64()
		return strconv.FormatUint(n, 10)
	case value.KindFloat32, value.KindFloat64:
		f, _ := v.Float64()
		rat := new(big.Rat).SetFloat64(f)
		if rat == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return floater.FormatDecimalRat(rat, -1, 64)
	case value.KindDuration:
		d, _ := v.Duration()
		return strconv.FormatInt(int64(d), 10)
	case value.KindString:
		s, _ := v.String()
		return s
	case value.KindBytes:
		b, _ := v.Bytes()
		return base58.Encode(b)
	default:
		return ""
	}
}

func parseValue(kind value.Kind, s string) (value.Value, error) {
	switch kind {
	case value.KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case value.KindInt8:
		n, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int8(int8(n)), nil
	case value.KindInt16:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int16(int16(n)), nil
	case value.KindInt32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(n)), nil
	case value.KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(n), nil
	case value.KindUint8:
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint8(uint8(n)), nil
	case value.KindUint16:
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint16(uint16(n)), nil
	case value.KindUint32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint32(uint32(n)), nil
	case value.KindUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint64(n), nil
	case value.KindFloat32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float32(float32(f)), nil
	case value.KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(f), nil
	case value.KindDuration:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Duration(time.Duration(n)), nil
	case value.KindString:
		return value.String(s), nil
	case value.KindBytes:
		b, err := base58.Decode(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bytes(b), nil
	default:
		return value.Value{}, fmt.Errorf("storage: parse value: unsupported kind %s", kind)
	}
}

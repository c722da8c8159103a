package storage

import (
	"strings"
	"time"
)

// timestampLayout is the file-name infix format: nanosecond-precision UTC,
// chosen so a new segment's name always sorts strictly after the last
// offset recorded inside the prior segment (spec section 3, "Rolling file
// segment"). Exactly 26 characters: YYYYMMDDThhmmss.nnnnnnnnnZ.
const timestampLayout = "20060102T150405.000000000Z"

const timestampLen = len("20060102T150405.000000000Z")

// NameTemplate describes the prefix/suffix wrapped around the timestamp
// infix for a rolling segment file name.
type NameTemplate struct {
	Prefix string
	Suffix string
}

// FormatFileName builds the file name for a segment created at createdAt.
func (t NameTemplate) FormatFileName(createdAt time.Time) string {
	var b strings.Builder
	b.Grow(len(t.Prefix) + timestampLen + len(t.Suffix))
	b.WriteString(t.Prefix)
	b.WriteString(createdAt.UTC().Format(timestampLayout))
	b.WriteString(t.Suffix)
	return b.String()
}

// ParseFileName recovers the creation timestamp from a file name, or
// reports ok=false if the name does not match prefix+timestamp+suffix
// exactly (foreign files are ignored, never an error).
func (t NameTemplate) ParseFileName(name string) (createdAt time.Time, ok bool) {
	if !strings.HasPrefix(name, t.Prefix) || !strings.HasSuffix(name, t.Suffix) {
		return time.Time{}, false
	}
	infix := name[len(t.Prefix) : len(name)-len(t.Suffix)]
	if len(infix) != timestampLen {
		return time.Time{}, false
	}
	parsed, err := time.Parse(timestampLayout, infix)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

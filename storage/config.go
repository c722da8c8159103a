package storage

import "time"

// SegmentInterval is a named periodic duration used as a rolling-file
// segmentation limit (spec section 6, "segmentation.time_interval").
type SegmentInterval time.Duration

const (
	Daily  SegmentInterval = SegmentInterval(24 * time.Hour)
	Weekly SegmentInterval = SegmentInterval(7 * 24 * time.Hour)
)

// Duration returns the plain time.Duration backing the interval.
func (i SegmentInterval) Duration() time.Duration { return time.Duration(i) }

// RollingFileLimits bounds a segment's lifetime. A segment should roll when
// any configured limit is reached; a nil field means that limit does not
// apply.
type RollingFileLimits struct {
	MaxBytesWritten      *uint64
	MaxRecordsWritten     *uint64
	MaxNanosecondsOffset  *uint64
	Interval              *SegmentInterval
}

// DailyLimits returns limits that roll once per day and otherwise never.
func DailyLimits() RollingFileLimits {
	iv := Daily
	return RollingFileLimits{Interval: &iv}
}

// WeeklyLimits returns limits that roll once per week and otherwise never.
func WeeklyLimits() RollingFileLimits {
	iv := Weekly
	return RollingFileLimits{Interval: &iv}
}

// Config configures a Storage instance (spec section 6, "Storage config").
type Config struct {
	BasePath      string
	NameTemplate  NameTemplate
	Limits        RollingFileLimits
	RetentionTime time.Duration
}

// DefaultRetentionTime is the spec's default retention window (180 days).
const DefaultRetentionTime = 180 * 24 * time.Hour

// DefaultLimits is the spec's default segmentation policy: roll daily or
// past 1 MiB, whichever comes first.
func DefaultLimits() RollingFileLimits {
	limits := DailyLimits()
	maxBytes := uint64(1 << 20)
	limits.MaxBytesWritten = &maxBytes
	return limits
}

// NewConfig builds a Config with the spec's documented defaults for
// retention and segmentation, overridable field-by-field by the caller.
func NewConfig(basePath string, nameTemplate NameTemplate) Config {
	return Config{
		BasePath:      basePath,
		NameTemplate:  nameTemplate,
		Limits:        DefaultLimits(),
		RetentionTime: DefaultRetentionTime,
	}
}

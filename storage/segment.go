package storage

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/slowtec/msr/msrerr"
)

// SegmentStatus tracks a single open segment's accounting against its
// RollingFileLimits.
type SegmentStatus struct {
	CreatedAt      time.Time
	BytesWritten   uint64
	RecordsWritten uint64
}

// ShouldRoll reports whether the segment should roll before accepting
// another write, given the current wall time and the configured limits
// (spec section 4.4, "Segment limits" — any one limit reached rolls).
func (s SegmentStatus) ShouldRoll(now time.Time, limits RollingFileLimits) bool {
	if limits.MaxBytesWritten != nil && s.BytesWritten >= *limits.MaxBytesWritten {
		return true
	}
	if limits.MaxRecordsWritten != nil && s.RecordsWritten >= *limits.MaxRecordsWritten {
		return true
	}
	if limits.MaxNanosecondsOffset != nil {
		offset := now.Sub(s.CreatedAt)
		if offset >= 0 && uint64(offset) >= *limits.MaxNanosecondsOffset {
			return true
		}
	}
	if limits.Interval != nil {
		nextRollover := s.CreatedAt.Add(limits.Interval.Duration())
		if !nextRollover.After(now) {
			return true
		}
	}
	return false
}

// FileInfo describes a segment file discovered on disk.
type FileInfo struct {
	Path      string
	CreatedAt time.Time
	SizeBytes int64
}

// fileSystem wraps the base path and naming template, providing the
// directory-scan and atomic-create primitives the Storage type builds on.
// Grounded on original_source's RollingFileSystem
// (io/file/policy.rs): open-with-create-new, list-and-filter, sort
// chronologically.
type fileSystem struct {
	basePath string
	template NameTemplate
}

func (fs fileSystem) pathFor(createdAt time.Time) string {
	return filepath.Join(fs.basePath, fs.template.FormatFileName(createdAt))
}

// openNewFile attempts to exclusively create a new segment file at
// createdAt. alreadyExists is true, with a nil file, if a file with that
// exact name exists already (spec 4.4 step 3: preserves idempotence across
// clock skew or racing writers).
func (fs fileSystem) openNewFile(createdAt time.Time) (f *os.File, info FileInfo, alreadyExists bool, err error) {
	path := fs.pathFor(createdAt)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, FileInfo{}, true, nil
		}
		return nil, FileInfo{}, false, &msrerr.IoTransientError{
			Message: "storage: create segment file",
			Cause:   err,
		}
	}
	return file, FileInfo{Path: path, CreatedAt: createdAt}, false, nil
}

// listChronological returns every recognized segment file in basePath,
// oldest first. Foreign directory entries (names not matching the
// prefix+timestamp+suffix pattern) are silently ignored.
func (fs fileSystem) listChronological() ([]FileInfo, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, &msrerr.IoTransientError{Message: "storage: read directory", Cause: err}
	}
	out := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := fs.template.ParseFileName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Path:      filepath.Join(fs.basePath, entry.Name()),
			CreatedAt: createdAt,
			SizeBytes: fi.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// filterByWindow restricts listChronological's result to files whose
// creation timestamp falls within [since, until] inclusive (spec section
// 4.4, "Prelude filter to file filter").
func filterByWindow(files []FileInfo, since, until time.Time) []FileInfo {
	out := files[:0:0]
	for _, f := range files {
		if f.CreatedAt.Before(since) || f.CreatedAt.After(until) {
			continue
		}
		out = append(out, f)
	}
	return out
}

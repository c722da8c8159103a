package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/slowtec/msr/internal/logging"
	"github.com/slowtec/msr/msrerr"
)

// maxConcurrentSegmentStats bounds how many segment files Stats reads at
// once, so a directory with thousands of segments doesn't open them all
// simultaneously.
const maxConcurrentSegmentStats = 8

// StoredRecord pairs a decoded record with its segment origin and in-segment
// offset, so a caller can recover the record's absolute created_at
// (origin.Add(offset)) without Storage having to carry that back through
// the record type itself.
type StoredRecord[R any] struct {
	Origin time.Time
	Offset time.Duration
	Record R
}

// PreludeFilter bounds a FilterRecords scan by absolute created_at (spec
// section 4.4, "Prelude filter to file filter").
type PreludeFilter struct {
	SinceCreatedAt *time.Time
	UntilCreatedAt *time.Time
}

// Storage is a rolling-file record store dedicated to one record type R, via
// a Codec[R] supplying the type-specific (de)serialization. Not safe for
// concurrent use — callers serialize their own access (spec section 5,
// "Storage is owned exclusively by its constructor").
type Storage[R any] struct {
	cfg    Config
	fs     fileSystem
	codec  Codec[R]
	logger logging.Logger

	file     *os.File
	counting *countingWriter
	csv      *csv.Writer
	status   SegmentStatus
	lastOff  time.Duration

	housekept bool
	lastIOErr string
}

// New constructs a Storage bound to cfg and codec. No file I/O happens until
// the first Append.
func New[R any](cfg Config, codec Codec[R]) *Storage[R] {
	return &Storage[R]{
		cfg:    cfg,
		fs:     fileSystem{basePath: cfg.BasePath, template: cfg.NameTemplate},
		codec:  codec,
		logger: logging.Nop(),
	}
}

// WithLogger attaches a Logger that receives I/O incident and retention
// diagnostics. Returns s for chaining after New.
func (s *Storage[R]) WithLogger(logger logging.Logger) *Storage[R] {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Append writes one record at wall-clock time now, rolling to a new segment
// first if the current one has reached a configured limit. rolled is
// non-nil when a prior segment was just closed, carrying its file info for
// the caller (e.g. to compress or archive it). offset is the record's
// in-segment created_at_offset.
func (s *Storage[R]) Append(now time.Time, record R) (rolled *FileInfo, offset time.Duration, err error) {
	if s.file == nil {
		if err := s.performHousekeeping(now); err != nil {
			return nil, 0, err
		}
		if err := s.openSegment(now); err != nil {
			return nil, 0, err
		}
	} else if s.status.ShouldRoll(now, s.cfg.Limits) {
		closed := s.status
		closedPath := s.file.Name()
		if err := s.closeSegment(); err != nil {
			return nil, 0, err
		}
		if err := s.openSegment(now); err != nil {
			if errors.Is(err, errSegmentAlreadyExists) {
				// preserve idempotence: keep writing to the segment we just
				// closed instead of failing the whole append.
				if reopenErr := s.reopenSegment(closedPath, closed); reopenErr != nil {
					return nil, 0, reopenErr
				}
			} else {
				return nil, 0, err
			}
		} else {
			rolled = &FileInfo{Path: closedPath, CreatedAt: closed.CreatedAt}
		}
	}

	off := now.Sub(s.status.CreatedAt)
	if off < s.lastOff {
		off = s.lastOff // non-decreasing within a segment (spec section 3)
	}
	s.lastOff = off

	row := append([]string{strconv.FormatUint(uint64(off), 10)}, s.codec.Marshal(record)...)
	if err := s.csv.Write(row); err != nil {
		return rolled, 0, s.ioError(err)
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return rolled, 0, s.ioError(err)
	}

	s.status.BytesWritten = s.counting.Count()
	s.status.RecordsWritten++
	s.lastIOErr = ""
	return rolled, off, nil
}

var errSegmentAlreadyExists = errors.New("storage: segment file already exists")

func (s *Storage[R]) openSegment(now time.Time) error {
	file, info, alreadyExists, err := s.fs.openNewFile(now)
	if err != nil {
		return s.ioError(err)
	}
	if alreadyExists {
		return errSegmentAlreadyExists
	}
	s.counting = newCountingWriter(file)
	s.csv = csv.NewWriter(s.counting)
	s.file = file
	s.status = SegmentStatus{CreatedAt: info.CreatedAt}
	s.lastOff = 0
	return nil
}

// reopenSegment re-opens an already-closed segment file for append, used
// when a roll attempt lost the create-new race (spec 4.4 step 3).
func (s *Storage[R]) reopenSegment(path string, status SegmentStatus) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return s.ioError(err)
	}
	s.counting = newCountingWriter(file)
	s.csv = csv.NewWriter(s.counting)
	s.file = file
	s.status = status
	return nil
}

func (s *Storage[R]) closeSegment() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		_ = s.file.Close()
		return s.ioError(err)
	}
	err := s.file.Close()
	s.file = nil
	s.csv = nil
	s.counting = nil
	if err != nil {
		return s.ioError(err)
	}
	return nil
}

// ioError wraps err as IoRepeatedOsError if it carries the same OS error
// code as the previous I/O failure, else as IoTransientError (spec section
// 4.4, "I/O error suppression"). Errors without an OS error code are
// compared by their message instead.
func (s *Storage[R]) ioError(err error) error {
	key := err.Error()
	var errno syscall.Errno
	code := 0
	if errors.As(err, &errno) {
		code = int(errno)
		key = "errno " + strconv.Itoa(code)
	}
	if key == s.lastIOErr && s.lastIOErr != "" {
		s.logger.Warning().Err(err).Int("code", code).Log("storage: repeated I/O error")
		return &msrerr.IoRepeatedOsError{Code: code, Cause: err}
	}
	s.lastIOErr = key
	s.logger.Err().Err(err).Log("storage: I/O error")
	return &msrerr.IoTransientError{Message: "storage: I/O error", Cause: err}
}

// performHousekeeping drops records older than cfg.RetentionTime, invoked
// implicitly on first write (spec section 4.4, "Housekeeping").
func (s *Storage[R]) performHousekeeping(now time.Time) error {
	if s.housekept {
		return nil
	}
	s.housekept = true
	return s.RetainAllRecordsCreatedSince(now.Add(-s.cfg.RetentionTime))
}

// RetainAllRecordsCreatedSince deletes every segment file created strictly
// before the most recent segment whose creation time is <= createdSince,
// preserving the invariant that no record with created_at >= createdSince
// is ever lost (spec section 4.4, "Retention").
func (s *Storage[R]) RetainAllRecordsCreatedSince(createdSince time.Time) error {
	files, err := s.fs.listChronological()
	if err != nil {
		return err
	}
	candidates := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if !f.CreatedAt.After(createdSince) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) <= 1 {
		return nil
	}
	for _, f := range candidates[:len(candidates)-1] {
		if s.file != nil && f.Path == s.file.Name() {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return s.ioError(err)
		}
		s.logger.Debug().Str("path", f.Path).Log("storage: retention removed segment")
	}
	return nil
}

// RecentRecords returns up to limit of the most recently written records,
// newest first, scanning segments chronologically descending (spec section
// 4.4, "Read path").
func (s *Storage[R]) RecentRecords(limit int) ([]StoredRecord[R], error) {
	if limit <= 0 {
		return nil, nil
	}
	files, err := s.fs.listChronological()
	if err != nil {
		return nil, err
	}
	result := make([]StoredRecord[R], 0, limit)
	for i := len(files) - 1; i >= 0 && len(result) < limit; i-- {
		f := files[i]
		remaining := limit - len(result)
		recs, err := s.readFileRecords(f.Path)
		if err != nil {
			return nil, err
		}
		ring := newBoundedRing[offsetRecord[R]](remaining)
		for _, r := range recs {
			ring.Push(r)
		}
		kept := ring.Slice()
		for j := len(kept) - 1; j >= 0; j-- {
			result = append(result, StoredRecord[R]{Origin: f.CreatedAt, Offset: kept[j].Offset, Record: kept[j].Record})
		}
	}
	return result, nil
}

// FilterRecords returns up to limit records (0 means unlimited) within
// filter's bounds, oldest first, scanning segments chronologically
// ascending (spec section 4.4, "Read path").
func (s *Storage[R]) FilterRecords(limit int, filter PreludeFilter, now time.Time) ([]StoredRecord[R], error) {
	since := time.Time{}
	if filter.SinceCreatedAt != nil {
		since = *filter.SinceCreatedAt
	}
	until := now
	if filter.UntilCreatedAt != nil {
		until = *filter.UntilCreatedAt
	}

	files, err := s.fs.listChronological()
	if err != nil {
		return nil, err
	}
	files = filterByWindow(files, since, until)

	result := make([]StoredRecord[R], 0)
	for _, f := range files {
		if limit > 0 && len(result) >= limit {
			break
		}
		recs, err := s.readFileRecords(f.Path)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			absolute := f.CreatedAt.Add(r.Offset)
			if absolute.Before(since) {
				continue
			}
			if absolute.After(until) {
				break
			}
			result = append(result, StoredRecord[R]{Origin: f.CreatedAt, Offset: r.Offset, Record: r.Record})
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

type offsetRecord[R any] struct {
	Offset time.Duration
	Record R
}

// readFileRecords reads every record in path, in file order (ascending
// offset). A record that fails to parse is skipped; reads continue (spec
// section 7, FormatInvalid).
func (s *Storage[R]) readFileRecords(path string) ([]offsetRecord[R], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, s.ioError(err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1

	var out []offsetRecord[R]
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.ioError(err)
		}
		if len(row) < 1 {
			continue
		}
		nanos, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			continue
		}
		record, err := s.codec.Unmarshal(row[1:])
		if err != nil {
			continue
		}
		out = append(out, offsetRecord[R]{Offset: time.Duration(nanos), Record: record})
	}
	return out, nil
}

// SegmentStats summarizes one segment file for a Stats report.
type SegmentStats struct {
	CreatedAt    time.Time
	TotalRecords int
	TotalBytes   int64
}

// Stats summarizes every segment in the storage's base path (spec section
// 4.4 read path, generalizing the original's report_statistics).
type Stats struct {
	TotalRecords int
	TotalBytes   int64
	Segments     []SegmentStats
}

// Stats reads and counts records in every segment file, bounding
// concurrency so a directory with many segments doesn't open them all at
// once.
func (s *Storage[R]) Stats(ctx context.Context) (Stats, error) {
	files, err := s.fs.listChronological()
	if err != nil {
		return Stats{}, err
	}

	segments := make([]SegmentStats, len(files))
	sem := semaphore.NewWeighted(maxConcurrentSegmentStats)
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			recs, err := s.readFileRecords(f.Path)
			if err != nil {
				return err
			}
			segments[i] = SegmentStats{CreatedAt: f.CreatedAt, TotalRecords: len(recs), TotalBytes: f.SizeBytes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Segments: segments}
	for _, seg := range segments {
		stats.TotalRecords += seg.TotalRecords
		stats.TotalBytes += seg.TotalBytes
	}
	return stats, nil
}

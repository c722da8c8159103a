// Package storage implements rolling-file record storage: time-and-size
// bounded file segmentation, chronological directory scans, prelude-filtered
// reads, and a retention sweep.
//
// Grounded on the teacher's file-backed append-only log
// (quantumlife-canon-core's storelog.FileLog: atomic per-write os.OpenFile
// with O_APPEND, an in-memory index rebuilt on open) for the write/open
// idiom, and on original_source's crates/msr-core/src/io/file/policy.rs for
// the segment-roll and file-naming rules this package reproduces in Go.
//
// A Storage[R] is dedicated to one record type R; it is not safe for
// concurrent use (mirrors the original's !Sync storage object) — callers
// serialize their own access.
package storage

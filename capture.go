// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

import "code.hybscloud.com/plog/snapshot"

// captureArgs dispatches each argument to the typed Snapshot capture
// method matching its declared Go type (spec.md §4.A capture_many):
// integer widths by declared type, floats by declared type, booleans
// explicit, strings captured inline (Go string assignment is already
// zero-copy at the language level, but a Snapshot cannot outlive the
// pipeline stage that owns the backing array, so plain strings are always
// copied inline rather than borrowed; wrap a value in View when its
// lifetime is guaranteed to outlive the snapshot).
func captureArgs(s *snapshot.Snapshot, args []any) {
	for _, a := range args {
		switch v := a.(type) {
		case int:
			s.CaptureInt64(int64(v))
		case int32:
			s.CaptureInt32(v)
		case int64:
			s.CaptureInt64(v)
		case uint:
			s.CaptureUint64(uint64(v))
		case uint32:
			s.CaptureUint32(v)
		case uint64:
			s.CaptureUint64(v)
		case float32:
			s.CaptureFloat32(v)
		case float64:
			s.CaptureFloat64(v)
		case bool:
			s.CaptureBool(v)
		case View:
			s.CaptureStringView(string(v))
		case string:
			s.CaptureStringCopy(v)
		default:
			s.CaptureStringCopy(unsupportedArgPlaceholder)
		}
	}
}

const unsupportedArgPlaceholder = "<unsupported>"

// View is a marker for a string whose backing array is guaranteed to
// outlive the snapshot's lifetime (typically a string literal), enabling
// zero-copy StringView capture instead of an inline copy.
type View string

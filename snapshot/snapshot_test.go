// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"bytes"
	"strings"
	"testing"
)

func TestCaptureAndFormat(t *testing.T) {
	var s Snapshot
	if !s.CaptureInt32(42) {
		t.Fatalf("CaptureInt32 failed")
	}
	if !s.CaptureStringCopy("onePlog") {
		t.Fatalf("CaptureStringCopy failed")
	}
	if !s.CaptureFloat64(3.14) {
		t.Fatalf("CaptureFloat64 failed")
	}
	if s.ArgCount() != 3 {
		t.Fatalf("ArgCount() = %d, want 3", s.ArgCount())
	}
	got := string(s.FormatWith(nil, "v={} name={} pi={}"))
	want := "v=42 name=onePlog pi=3.140000"
	if got != want {
		t.Fatalf("FormatWith() = %q, want %q", got, want)
	}
}

func TestIsEmpty(t *testing.T) {
	var s Snapshot
	if !s.IsEmpty() {
		t.Fatalf("new Snapshot should be empty")
	}
	s.CaptureBool(true)
	if s.IsEmpty() {
		t.Fatalf("Snapshot with one argument should not be empty")
	}
}

func TestCapacityOverflow(t *testing.T) {
	var s Snapshot
	n := 0
	for s.CaptureInt64(int64(n)) {
		n++
	}
	if n == 0 {
		t.Fatalf("expected at least one successful capture before overflow")
	}
	if int(s.Offset()) > Capacity {
		t.Fatalf("offset %d exceeds capacity %d", s.Offset(), Capacity)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	var s Snapshot
	s.CaptureInt32(7)
	s.CaptureStringCopy("hello")
	s.CaptureBool(false)

	var wire [Capacity]byte
	s.SerializeTo(&wire)

	var out Snapshot
	out.DeserializeFrom(&wire)

	if out.ArgCount() != s.ArgCount() {
		t.Fatalf("ArgCount mismatch after round trip: got %d want %d", out.ArgCount(), s.ArgCount())
	}
	gotFmt := string(out.FormatWith(nil, "{} {} {}"))
	wantFmt := string(s.FormatWith(nil, "{} {} {}"))
	if gotFmt != wantFmt {
		t.Fatalf("format mismatch after round trip: got %q want %q", gotFmt, wantFmt)
	}
}

func TestConvertBorrowedToInlineIsIdempotent(t *testing.T) {
	var s Snapshot
	s.CaptureInt32(1)
	s.CaptureStringCopy("already-inline")
	before := s.FormatAll(nil)

	s.ConvertBorrowedToInline()
	after := s.FormatAll(nil)
	if string(before) != string(after) {
		t.Fatalf("ConvertBorrowedToInline changed a snapshot with no borrowed views: %q -> %q", before, after)
	}
	s.ConvertBorrowedToInline()
	again := s.FormatAll(nil)
	if string(after) != string(again) {
		t.Fatalf("ConvertBorrowedToInline is not idempotent: %q -> %q", after, again)
	}
}

func TestConvertBorrowedToInlineFreesOriginal(t *testing.T) {
	var s Snapshot
	func() {
		local := strings.Repeat("x", 32)
		if !s.CaptureStringView(local) {
			t.Fatalf("CaptureStringView failed")
		}
	}()
	s.ConvertBorrowedToInline()
	got := string(s.FormatAll(nil))
	want := strings.Repeat("x", 32)
	if got != want {
		t.Fatalf("FormatAll() after conversion = %q, want %q", got, want)
	}
}

func TestFormatAllSpaceSeparated(t *testing.T) {
	var s Snapshot
	s.CaptureInt32(1)
	s.CaptureInt32(2)
	s.CaptureInt32(3)
	got := string(s.FormatAll(nil))
	if got != "1 2 3" {
		t.Fatalf("FormatAll() = %q, want %q", got, "1 2 3")
	}
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	var s Snapshot
	s.CaptureInt32(9)
	s.CaptureStringCopy("via-io")

	var wire bytes.Buffer
	n, err := s.WriteTo(&wire)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != Capacity {
		t.Fatalf("WriteTo wrote %d bytes, want %d", n, Capacity)
	}

	var out Snapshot
	if _, err := out.ReadFrom(&wire); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if out.ArgCount() != s.ArgCount() {
		t.Fatalf("ArgCount mismatch after io round trip: got %d want %d", out.ArgCount(), s.ArgCount())
	}
	if string(out.FormatAll(nil)) != string(s.FormatAll(nil)) {
		t.Fatalf("format mismatch after io round trip")
	}
}

func TestMarshalUnmarshalBinaryRoundTrip(t *testing.T) {
	var s Snapshot
	s.CaptureBool(true)
	s.CaptureFloat32(1.5)

	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(data) != Capacity {
		t.Fatalf("MarshalBinary returned %d bytes, want %d", len(data), Capacity)
	}

	var out Snapshot
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if string(out.FormatAll(nil)) != string(s.FormatAll(nil)) {
		t.Fatalf("format mismatch after binary round trip")
	}

	if err := out.UnmarshalBinary(data[:10]); err == nil {
		t.Fatalf("UnmarshalBinary accepted a short buffer")
	}
}

func TestReset(t *testing.T) {
	var s Snapshot
	s.CaptureInt32(1)
	s.Reset()
	if !s.IsEmpty() {
		t.Fatalf("Reset should clear arguments")
	}
	if s.Offset() != headerSize {
		t.Fatalf("Reset should restore offset to header size, got %d", s.Offset())
	}
}

// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import "encoding/binary"

// SerializeTo writes e's on-wire representation (EntrySize bytes) to dst.
func (e *Entry) SerializeTo(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], uint64(e.Timestamp))
	dst[8] = byte(e.Level)
	dst[9], dst[10], dst[11] = 0, 0, 0
	binary.LittleEndian.PutUint32(dst[12:16], e.ThreadID)
	binary.LittleEndian.PutUint32(dst[16:20], e.ProcessID)
	binary.LittleEndian.PutUint32(dst[20:24], 0)
	e.Snapshot.SerializeTo((*[EntrySize - 24]byte)(dst[24:EntrySize]))
}

// DeserializeFrom populates e from src, a buffer previously produced by
// SerializeTo (or received over the wire from a SharedRingBuffer slot).
func (e *Entry) DeserializeFrom(src []byte) {
	e.Timestamp = int64(binary.LittleEndian.Uint64(src[0:8]))
	e.Level = Level(src[8])
	e.ThreadID = binary.LittleEndian.Uint32(src[12:16])
	e.ProcessID = binary.LittleEndian.Uint32(src[16:20])
	e.Snapshot.DeserializeFrom((*[EntrySize - 24]byte)(src[24:EntrySize]))
}

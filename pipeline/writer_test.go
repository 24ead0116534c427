// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"testing"
	"time"

	"code.hybscloud.com/plog/record"
	"code.hybscloud.com/plog/ring"
	"code.hybscloud.com/plog/sink"
)

func TestWriterDrainsToSink(t *testing.T) {
	q := ring.New[record.Entry](ring.Config{Capacity: 8, Policy: ring.DropNewest})
	var buf bytes.Buffer
	s := sink.NewWriter(&buf)
	w := NewWriter(WriterConfig{
		Queue:     q,
		Formatter: TextFormatter{Template: "critical {}"},
		Sinks:     []sink.Sink{s},
		MaxWait:   10 * time.Millisecond,
	})

	var e record.Entry
	e.Level = record.Error
	e.Snapshot.CaptureUint32(0xDEAD)
	if _, err := q.TryPush(&e); err != nil {
		t.Fatalf("TryPush() = %v", err)
	}

	go w.Run()
	deadline := time.Now().Add(time.Second)
	for buf.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Shutdown()

	got := buf.String()
	want := "critical 57005"
	if !bytes.Contains([]byte(got), []byte(want)) {
		t.Fatalf("sink output = %q, want it to contain %q", got, want)
	}
}

func TestWriterPushWFCObservesFlush(t *testing.T) {
	q := ring.New[record.Entry](ring.Config{Capacity: 8, Policy: ring.DropNewest})
	var buf bytes.Buffer
	s := sink.NewWriter(&buf)
	w := NewWriter(WriterConfig{
		Queue:     q,
		Formatter: TextFormatter{Template: "critical {}"},
		Sinks:     []sink.Sink{s},
		MaxWait:   10 * time.Millisecond,
	})
	go w.Run()
	defer w.Shutdown()

	var e record.Entry
	e.Level = record.Error
	e.Snapshot.CaptureUint32(0xDEAD)
	if err := q.PushWFC(&e, time.Second); err != nil {
		t.Fatalf("PushWFC() = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("critical 57005")) {
		t.Fatalf("sink output after PushWFC = %q, want it to contain the record", buf.String())
	}
}

func TestShutdownDrainsAndStopsDelivery(t *testing.T) {
	q := ring.New[record.Entry](ring.Config{Capacity: 8, Policy: ring.DropNewest})
	var buf bytes.Buffer
	s := sink.NewWriter(&buf)
	w := NewWriter(WriterConfig{
		Queue:     q,
		Formatter: TextFormatter{},
		Sinks:     []sink.Sink{s},
		MaxWait:   5 * time.Millisecond,
	})

	for i := 0; i < 5; i++ {
		var e record.Entry
		e.Snapshot.CaptureInt32(int32(i))
		q.TryPush(&e)
	}

	go w.Run()
	w.Shutdown()
	w.Flush()

	if !q.IsEmpty() {
		t.Fatalf("queue should be empty after Shutdown+Flush")
	}
	var late record.Entry
	if _, err := q.TryPush(&late); err != ring.ErrShuttingDown {
		t.Fatalf("TryPush after Shutdown = %v, want ring.ErrShuttingDown", err)
	}
}

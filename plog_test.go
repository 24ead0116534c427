// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"code.hybscloud.com/plog/pipeline"
	"code.hybscloud.com/plog/sink"
	"code.hybscloud.com/plog/snapshot"
)

func TestSyncModePushWritesImmediately(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:      Sync,
		Formatter: pipeline.TextFormatter{Template: "hello {}"},
		Sinks:     []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	if err := core.Push(0, Info, View("world")); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("got %q, want it to contain %q", buf.String(), "hello world")
	}
}

func TestAsyncModeDrainsToSink(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:      Async,
		Capacity:  16,
		Formatter: pipeline.TextFormatter{Template: "n={}"},
		Sinks:     []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	defer core.Shutdown()

	if err := core.Push(0, Info, int32(7)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	core.Flush()

	if !strings.Contains(buf.String(), "n=7") {
		t.Fatalf("got %q, want it to contain %q", buf.String(), "n=7")
	}
}

func TestAsyncPushWFCObservesFlush(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:      Async,
		Capacity:  16,
		WFCEnabled: true,
		Formatter: pipeline.TextFormatter{Template: "critical {}"},
		Sinks:     []sink.Sink{sink.NewWriter(&buf)},
		PollTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	defer core.Shutdown()

	if err := core.PushWFC(0, Error, uint32(0xDEAD)); err != nil {
		t.Fatalf("PushWFC: %v", err)
	}
	if !strings.Contains(buf.String(), "critical 57005") {
		t.Fatalf("PushWFC returned before sink observed the entry: got %q", buf.String())
	}
}

func TestShutdownStopsDeliveryAfterDraining(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:      Async,
		Capacity:  16,
		Formatter: pipeline.TextFormatter{Template: "x={}"},
		Sinks:     []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}

	for i := 0; i < 5; i++ {
		core.Push(0, Info, int32(i))
	}
	core.Shutdown()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if !strings.Contains(buf.String(), "x="+string(rune('0'+i))) {
			t.Fatalf("entry %d missing after shutdown drain: %q", i, buf.String())
		}
	}
	core.Push(0, Info, int32(9))
	time.Sleep(20 * time.Millisecond)
	if strings.Contains(buf.String(), "x=9") {
		t.Fatalf("entry pushed after Shutdown was delivered: %q", buf.String())
	}
}

func TestProcessAndThreadNaming(t *testing.T) {
	core, err := NewOwner(Config{Mode: Sync, ProcessName: "owner-proc"})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	if got := core.Registry().ProcessName(core.pid); got != "owner-proc" {
		t.Fatalf("ProcessName(pid) = %q, want %q", got, "owner-proc")
	}
	core.SetThreadModule(42, "worker")
	if got := core.Registry().ThreadModule(42); got != "worker" {
		t.Fatalf("ThreadModule(42) = %q, want %q", got, "worker")
	}
	if got := core.Registry().ThreadModule(999); got != "main" {
		t.Fatalf("ThreadModule(999) = %q, want default %q", got, "main")
	}
}

func TestNewOwnerRejectsBadCapacity(t *testing.T) {
	if _, err := NewOwner(Config{Mode: Async, Capacity: 3}); err != ErrCapacity {
		t.Fatalf("got %v, want ErrCapacity", err)
	}
}

func TestNewOwnerRejectsBadSharedMemoryName(t *testing.T) {
	if _, err := NewOwner(Config{Mode: MProc, Capacity: 16, SharedMemoryName: "bad"}); err != ErrSharedMemoryName {
		t.Fatalf("got %v, want ErrSharedMemoryName", err)
	}
}

func TestMProcOwnerCannotPush(t *testing.T) {
	name := "/plog-test-owner-cannot-push"
	core, err := NewOwner(Config{Mode: MProc, Capacity: 16, SharedMemoryName: name})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	defer core.Shutdown()

	if err := core.Push(0, Info, int32(1)); err != ErrOwnerCannotPush {
		t.Fatalf("got %v, want ErrOwnerCannotPush", err)
	}
}

func TestMProcProducerRegistersNameVisibleToOwner(t *testing.T) {
	name := "/plog-test-mproc-naming"
	var buf bytes.Buffer
	owner, err := NewOwner(Config{
		Mode:             MProc,
		Capacity:         16,
		SharedMemoryName: name,
		Formatter:        pipeline.TextFormatter{Template: "from={}"},
		Sinks:            []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	defer owner.Shutdown()

	producer, err := NewProducer(Config{Mode: MProc, Capacity: 16, SharedMemoryName: name})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer producer.Shutdown()

	producer.SetProcessName("worker-7")
	if got, ok := owner.sharedReg.Get(producer.pid); !ok || got.View() != "worker-7" {
		t.Fatalf("owner observed name %q ok=%v, want %q", got.View(), ok, "worker-7")
	}

	// The pushed entry carries no name-bearing argument: the sink's
	// "pid=worker-7" rendering can only come from the owner's Formatter
	// resolving the record's numeric ProcessID through the NameRegistry.
	if err := producer.Push(0, Info, int32(99)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	producer.Flush()
	time.Sleep(100 * time.Millisecond)
	owner.Flush()

	if !strings.Contains(buf.String(), "pid=worker-7") {
		t.Fatalf("owner-rendered output did not resolve producer pid to its registered name: %q", buf.String())
	}
}

func TestPushSnapshotBypassesCaptureArgs(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:      Sync,
		Formatter: pipeline.TextFormatter{Template: "v={}"},
		Sinks:     []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}

	var s snapshot.Snapshot
	if !s.CaptureInt32(123) {
		t.Fatalf("CaptureInt32 failed")
	}
	if err := core.PushSnapshot(0, Info, &s); err != nil {
		t.Fatalf("PushSnapshot: %v", err)
	}
	if !strings.Contains(buf.String(), "v=123") {
		t.Fatalf("got %q, want it to contain %q", buf.String(), "v=123")
	}
}

func TestLogfRendersTemplateImmediately(t *testing.T) {
	var buf bytes.Buffer
	core, err := NewOwner(Config{
		Mode:  Sync,
		Sinks: []sink.Sink{sink.NewWriter(&buf)},
	})
	if err != nil {
		t.Fatalf("NewOwner: %v", err)
	}
	if err := core.Logf(0, Info, "answer=%d", 42); err != nil {
		t.Fatalf("Logf: %v", err)
	}
	if !strings.Contains(buf.String(), "answer=42") {
		t.Fatalf("got %q, want it to contain %q", buf.String(), "answer=42")
	}
}

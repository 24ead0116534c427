// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmring

import (
	"fmt"
	"os"
	"testing"

	"code.hybscloud.com/plog/ring"
)

func uniqueName(t *testing.T) string {
	return fmt.Sprintf("/plog-test-%d-%s", os.Getpid(), t.Name())
}

func TestCreateAttachPushPop(t *testing.T) {
	name := "/plog-test-create-attach"
	owner, err := Create(name, 4, 16, ring.DropNewest)
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer owner.Close()

	attacher, err := Attach(name, 16)
	if err != nil {
		t.Fatalf("Attach() = %v", err)
	}
	defer attacher.Close()

	payload := make([]byte, 16)
	copy(payload, "hello-world-1234")
	if _, err := attacher.TryPush(payload); err != nil {
		t.Fatalf("TryPush() = %v", err)
	}

	out := make([]byte, 16)
	if _, err := owner.TryPop(out); err != nil {
		t.Fatalf("TryPop() = %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("TryPop() = %q, want %q", out, payload)
	}
}

func TestAttachRejectsElementSizeMismatch(t *testing.T) {
	name := "/plog-test-element-mismatch"
	owner, err := Create(name, 4, 16, ring.DropNewest)
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer owner.Close()

	if _, err := Attach(name, 32); err != ErrCapacityMismatch {
		t.Fatalf("Attach() = %v, want ErrCapacityMismatch", err)
	}
}

func TestAttachMissingSegment(t *testing.T) {
	if _, err := Attach("/plog-test-does-not-exist", 16); err != ErrNotFound {
		t.Fatalf("Attach() = %v, want ErrNotFound", err)
	}
}

func TestDropNewestOnFull(t *testing.T) {
	name := "/plog-test-drop-newest"
	owner, err := Create(name, 2, 8, ring.DropNewest)
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	defer owner.Close()

	p := make([]byte, 8)
	if _, err := owner.TryPush(p); err != nil {
		t.Fatalf("TryPush() = %v", err)
	}
	if _, err := owner.TryPush(p); err != nil {
		t.Fatalf("TryPush() = %v", err)
	}
	if _, err := owner.TryPush(p); err != ErrFull {
		t.Fatalf("TryPush() on full ring = %v, want ErrFull", err)
	}
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"code.hybscloud.com/shmq"
)

func segName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("shmq-test-%d-%s", os.Getpid(), t.Name())
}

// TestSegmentCreateOpenRelease checks the creator/joiner lifecycle: a
// joiner sees what the creator wrote, and only the creator's Release
// removes the named backing object.
func TestSegmentCreateOpenRelease(t *testing.T) {
	name := segName(t)

	creator, err := shmq.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	creator.Bytes()[0] = 0x42

	joiner, err := shmq.Open(name)
	if err != nil {
		creator.Release()
		t.Fatalf("Open: %v", err)
	}
	if joiner.Bytes()[0] != 0x42 {
		t.Fatalf("joiner did not observe creator's write")
	}
	if joiner.Len() != creator.Len() {
		t.Fatalf("joiner Len()=%d, creator Len()=%d", joiner.Len(), creator.Len())
	}

	if err := joiner.Release(); err != nil {
		t.Fatalf("joiner Release: %v", err)
	}
	if _, err := shmq.Open(name); err != nil {
		t.Fatalf("segment still expected to exist after joiner Release: %v", err)
	}

	if err := creator.Release(); err != nil {
		t.Fatalf("creator Release: %v", err)
	}
	if _, err := shmq.Open(name); err == nil {
		t.Fatalf("segment still exists after creator Release")
	}
}

// TestSegmentCreateDuplicateFails checks Create fails when the name
// already exists, rather than silently truncating an in-use segment.
func TestSegmentCreateDuplicateFails(t *testing.T) {
	name := segName(t)

	first, err := shmq.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Release()

	_, err = shmq.Create(name, 4096)
	var wantErr *shmq.FailedCreateSharedMemoryError
	if !errors.As(err, &wantErr) {
		t.Fatalf("duplicate Create: got %v, want *FailedCreateSharedMemoryError", err)
	}
}

// TestSegmentOpenMissingFails checks Open fails cleanly for a name that
// was never created.
func TestSegmentOpenMissingFails(t *testing.T) {
	_, err := shmq.Open(segName(t) + "-does-not-exist")
	var wantErr *shmq.FailedOpenSharedMemoryError
	if !errors.As(err, &wantErr) {
		t.Fatalf("Open(missing): got %v, want *FailedOpenSharedMemoryError", err)
	}
}

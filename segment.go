// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// shmDir is where POSIX shared-memory objects live on Linux. A single
// name corresponds to a single ring, per spec.md §6 "Segment naming".
const shmDir = "/dev/shm/"

// Segment is a named OS-backed shared-memory mapping. It exposes a
// stable base address and length for its lifetime and releases the
// mapping on Release.
//
// Ownership of the backing object is a policy of Segment, not of its
// callers: the creator owns the name and unlinks it on Release; a
// joiner's Release only unmaps locally, per spec.md §3 "Lifecycle" and
// §9(iii).
//
// Grounded on other_examples' shm_ring.go: POSIX shared memory under
// /dev/shm/<name>, golang.org/x/sys/unix for open/truncate/mmap/unlink.
type Segment struct {
	name  string
	fd    int
	data  []byte
	owner bool
}

// Create allocates a new named segment of exactly size bytes. Fails
// with *FailedCreateSharedMemoryError if the name already exists or the
// OS refuses the request.
func Create(name string, size int) (*Segment, error) {
	path := shmDir + name
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0o600)
	if err != nil {
		return nil, &FailedCreateSharedMemoryError{Name: name, Err: err}
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		_ = unix.Unlink(path)
		return nil, &FailedCreateSharedMemoryError{Name: name, Err: fmt.Errorf("ftruncate: %w", err)}
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		_ = unix.Unlink(path)
		return nil, &FailedCreateSharedMemoryError{Name: name, Err: fmt.Errorf("mmap: %w", err)}
	}

	return &Segment{name: name, fd: fd, data: data, owner: true}, nil
}

// Open attaches to an existing named segment. The resulting length is
// whatever size the creator requested. Fails with
// *FailedOpenSharedMemoryError if the name does not exist or the OS
// refuses the request.
func Open(name string) (*Segment, error) {
	path := shmDir + name
	fd, err := unix.Open(path, unix.O_RDWR, 0o600)
	if err != nil {
		return nil, &FailedOpenSharedMemoryError{Name: name, Err: err}
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		_ = unix.Close(fd)
		return nil, &FailedOpenSharedMemoryError{Name: name, Err: fmt.Errorf("fstat: %w", err)}
	}

	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, &FailedOpenSharedMemoryError{Name: name, Err: fmt.Errorf("mmap: %w", err)}
	}

	return &Segment{name: name, fd: fd, data: data, owner: false}, nil
}

// Base returns the stable base address of the mapping.
func (s *Segment) Base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(s.data))
}

// Len returns the stable length of the mapping, in bytes.
func (s *Segment) Len() int {
	return len(s.data)
}

// Bytes returns the mapping as a byte slice sharing the underlying
// memory; writes through it are visible to every process mapping the
// same segment.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Release unmaps the segment locally. If this handle is the owner
// (i.e. it was returned by Create), the named backing object is also
// unlinked; a joiner's Release leaves the name intact for other
// processes still holding it, per spec.md §3 and §6.
func (s *Segment) Release() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	_ = unix.Close(s.fd)
	if s.owner {
		_ = unix.Unlink(shmDir + s.name)
	}
	return err
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"golang.org/x/sys/unix"
)

// WaitForever, passed as the timeout to Put or Get, waits indefinitely
// instead of giving up after a deadline.
const WaitForever time.Duration = -1

var _ ByteQueue = (*Queue)(nil)

// Queue composes a Segment and a Ring into the external interface
// spec.md §4.3 and §6 describe: named-segment lifecycle plus
// non-blocking and bounded-wait blocking put/get, with size and
// capacity queries.
//
// The poll quantum for Put/Get's bounded-wait retry is supplied by
// iox.Backoff (per spec.md §9 "Blocking without a shared primitive":
// a fixed/adaptive poll requires no cross-process kernel
// synchronization object beyond the segment itself).
type Queue struct {
	segment *Segment
	ring    *Ring
	closed  atomix.Uint64 // 0 = open, 1 = closed
}

// newQueue implements Builder.Build's two lifecycle paths (create vs.
// open) per spec.md §4.3 "Construction".
//
// Supplements spec.md with an advisory construction-time lock
// (original_source/src/lib.rs's NamedLock) so a creator and a racing
// opener never observe a half-initialized header; the lock is held
// only for the duration of this function, never on the enqueue/dequeue
// path.
func newQueue(name string, elementSize, capacity uint64, create bool) (*Queue, error) {
	unlock, err := acquireConstructionLock(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if create {
		if elementSize == 0 {
			return nil, &InvalidParametersError{Reason: "element_size must be > 0"}
		}
		if !isPowerOfTwo(capacity) {
			return nil, &BufferSizeNotPowerOfTwoError{Actual: capacity}
		}

		size := RequiredSize(elementSize, capacity)
		segment, err := Create(name, int(size))
		if err != nil {
			return nil, err
		}
		ring, err := InitOn(segment.Bytes(), elementSize, capacity, true)
		if err != nil {
			_ = segment.Release()
			return nil, err
		}
		return &Queue{segment: segment, ring: ring}, nil
	}

	segment, err := Open(name)
	if err != nil {
		return nil, err
	}
	ring, err := Attach(segment.Bytes())
	if err != nil {
		_ = segment.Release()
		return nil, err
	}
	return &Queue{segment: segment, ring: ring}, nil
}

// acquireConstructionLock takes an flock(2) advisory lock on a sidecar
// "<name>.lock" file, returning a function that releases it. This
// guards only the create-or-open decision in newQueue, never the
// lock-free ring itself.
func acquireConstructionLock(name string) (func(), error) {
	path := shmDir + name + ".lock"
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0o600)
	if err != nil {
		return nil, &FailedCreateSharedMemoryError{Name: name, Err: err}
	}
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		_ = unix.Close(fd)
		return nil, &FailedCreateSharedMemoryError{Name: name, Err: err}
	}
	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = unix.Close(fd)
	}, nil
}

// PutNowait enqueues item without blocking. item must be exactly
// ElementSize() bytes. Returns ErrQueueClosed after Close, a
// *QueueFullError if every slot is occupied, or
// *InvalidSourceLengthError on a length mismatch.
func (q *Queue) PutNowait(item []byte) error {
	if q.closed.LoadAcquire() != 0 {
		return ErrQueueClosed
	}
	return q.ring.Enqueue(item)
}

// GetNowait dequeues the next element without blocking. Returns
// ErrQueueClosed after Close, or a *QueueEmptyError if every slot is
// free.
func (q *Queue) GetNowait() ([]byte, error) {
	if q.closed.LoadAcquire() != 0 {
		return nil, ErrQueueClosed
	}
	dst := make([]byte, q.ring.ElementSize())
	if err := q.ring.Dequeue(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Put enqueues item, retrying on *QueueFullError with a short sleep
// between attempts until it succeeds or timeout elapses. WaitForever
// waits indefinitely. Any other error is surfaced immediately.
func (q *Queue) Put(item []byte, timeout time.Duration) error {
	backoff := iox.Backoff{}
	start := time.Now()
	for {
		err := q.PutNowait(item)
		if err == nil {
			return nil
		}
		if !IsWouldBlock(err) {
			return err
		}
		if timeout != WaitForever && time.Since(start) >= timeout {
			return err
		}
		backoff.Wait()
	}
}

// Get dequeues the next element, retrying on *QueueEmptyError with a
// short sleep between attempts until one is available or timeout
// elapses. WaitForever waits indefinitely. Any other error is surfaced
// immediately.
func (q *Queue) Get(timeout time.Duration) ([]byte, error) {
	backoff := iox.Backoff{}
	start := time.Now()
	for {
		item, err := q.GetNowait()
		if err == nil {
			return item, nil
		}
		if !IsWouldBlock(err) {
			return nil, err
		}
		if timeout != WaitForever && time.Since(start) >= timeout {
			return nil, err
		}
		backoff.Wait()
	}
}

// Len returns an estimate of the current occupancy; see Ring.Len.
// After Close it returns 0 without touching the released mapping.
func (q *Queue) Len() uint64 {
	if q.closed.LoadAcquire() != 0 {
		return 0
	}
	return q.ring.Len()
}

// Empty reports whether Len() == 0.
func (q *Queue) Empty() bool { return q.Len() == 0 }

// Full reports whether Len() >= MaxSize().
func (q *Queue) Full() bool { return q.Len() >= q.MaxSize() }

// ElementSize returns the fixed per-record byte length.
func (q *Queue) ElementSize() uint64 { return q.ring.ElementSize() }

// MaxSize returns the queue's capacity.
func (q *Queue) MaxSize() uint64 { return q.ring.Capacity() }

// Close is idempotent. After Close, PutNowait, GetNowait, Put and Get
// return ErrQueueClosed, and Len reports 0. It releases only the local
// mapping: whether the
// named segment is destroyed follows Segment.Release's ownership
// policy (the creator unlinks, a joiner does not).
func (q *Queue) Close() error {
	if q.closed.CompareAndSwapAcqRel(0, 1) {
		return q.segment.Release()
	}
	return nil
}

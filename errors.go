// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrQueueClosed is returned by every error-returning put/get operation
// on a Queue after Close has been called. Close itself is idempotent and
// never returns it.
var ErrQueueClosed = errors.New("shmq: queue is closed")

// IsWouldBlock reports whether err indicates the operation would block
// (QueueFullError or QueueEmptyError, or anything wrapping
// [iox.ErrWouldBlock]). Delegates to [iox.IsWouldBlock] for wrapped
// error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a
// failure). Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition:
// nil, or anything IsWouldBlock reports true for. Delegates to
// [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// InvalidParametersError reports a construction-time argument that is
// missing or out of range (e.g. no element_size given on create).
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("shmq: invalid parameters: %s", e.Reason)
}

// InvalidSourceLengthError is returned by Enqueue/PutNowait/Put when
// the source buffer's length does not equal the ring's element size.
type InvalidSourceLengthError struct {
	Expected, Actual uint64
}

func (e *InvalidSourceLengthError) Error() string {
	return fmt.Sprintf("shmq: invalid source length: expected %d, got %d", e.Expected, e.Actual)
}

// InvalidDestinationLengthError is returned by Dequeue when the
// destination buffer's length does not equal the ring's element size.
type InvalidDestinationLengthError struct {
	Expected, Actual uint64
}

func (e *InvalidDestinationLengthError) Error() string {
	return fmt.Sprintf("shmq: invalid destination length: expected %d, got %d", e.Expected, e.Actual)
}

// BufferTooSmallError is returned when a region is shorter than
// RequiredSize(elementSize, capacity).
type BufferTooSmallError struct {
	Required, Provided uint64
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("shmq: buffer too small: required %d, provided %d", e.Required, e.Provided)
}

// BufferMisalignedError is returned when a region's base address does
// not satisfy Header's natural alignment.
type BufferMisalignedError struct {
	Expected, Actual uintptr
}

func (e *BufferMisalignedError) Error() string {
	return fmt.Sprintf("shmq: buffer misaligned: expected multiple of %d, got offset %d", e.Expected, e.Actual)
}

// BufferSizeNotPowerOfTwoError is returned when capacity is not a
// power of two. Unlike the teacher's roundToPow2 helper, this package
// never silently rounds capacity up: spec.md requires rejecting it.
type BufferSizeNotPowerOfTwoError struct {
	Actual uint64
}

func (e *BufferSizeNotPowerOfTwoError) Error() string {
	return fmt.Sprintf("shmq: capacity must be a power of two, got %d", e.Actual)
}

// HeaderMagicMismatchError is returned by Attach/InitOn(create=false)
// when a region's header does not carry the expected magic value,
// indicating a foreign or stale segment rather than a shmq ring.
type HeaderMagicMismatchError struct {
	Expected, Actual uint64
}

func (e *HeaderMagicMismatchError) Error() string {
	return fmt.Sprintf("shmq: header magic mismatch: expected %#x, got %#x", e.Expected, e.Actual)
}

// QueueFullError is returned by a non-blocking enqueue when every slot
// is occupied. It wraps [iox.ErrWouldBlock] so the ecosystem's generic
// backoff helpers (iox.Backoff, IsWouldBlock) work against it
// unmodified — it is a retry signal, not a failure.
type QueueFullError struct{}

func (e *QueueFullError) Error() string { return "shmq: queue is full" }
func (e *QueueFullError) Unwrap() error { return iox.ErrWouldBlock }

// QueueEmptyError is returned by a non-blocking dequeue when every slot
// is free. It wraps [iox.ErrWouldBlock] for the same reason as
// QueueFullError.
type QueueEmptyError struct{}

func (e *QueueEmptyError) Error() string { return "shmq: queue is empty" }
func (e *QueueEmptyError) Unwrap() error { return iox.ErrWouldBlock }

// FailedCreateSharedMemoryError wraps an OS failure creating a named
// shared-memory segment.
type FailedCreateSharedMemoryError struct {
	Name string
	Err  error
}

func (e *FailedCreateSharedMemoryError) Error() string {
	return fmt.Sprintf("shmq: failed to create shared memory %q: %v", e.Name, e.Err)
}
func (e *FailedCreateSharedMemoryError) Unwrap() error { return e.Err }

// FailedOpenSharedMemoryError wraps an OS failure opening a named
// shared-memory segment.
type FailedOpenSharedMemoryError struct {
	Name string
	Err  error
}

func (e *FailedOpenSharedMemoryError) Error() string {
	return fmt.Sprintf("shmq: failed to open shared memory %q: %v", e.Name, e.Err)
}
func (e *FailedOpenSharedMemoryError) Unwrap() error { return e.Err }

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shmq provides a bounded, fixed-element-size, multi-producer
// multi-consumer queue whose entire state lives in a named OS-backed
// shared-memory segment, so unrelated processes can exchange
// fixed-size byte records with lock-free, wait-bounded enqueue/dequeue.
//
// # Quick Start
//
// Creator:
//
//	q, err := shmq.New("orders").ElementSize(8).Capacity(1024).Create().Build()
//
// Joiner (any process, any time after the creator has returned):
//
//	q, err := shmq.New("orders").Open().Build()
//
// # Basic Usage
//
// All operations work on fixed-size byte records (ElementSize() bytes
// each); marshaling application objects to/from those records is left
// to the caller (spec.md §1 calls this the "host-language binding
// layer" and places it out of scope).
//
//	// Enqueue (non-blocking)
//	err := q.PutNowait(record)
//	if shmq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking)
//	record, err := q.GetNowait()
//	if shmq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Bounded-Wait Variants
//
// Put and Get retry PutNowait/GetNowait on a short poll quantum until
// they succeed or an optional deadline passes:
//
//	// Wait up to 100ms for room
//	if err := q.Put(record, 100*time.Millisecond); err != nil {
//	    // shmq.IsWouldBlock(err) == true: still full after the deadline
//	}
//
//	// Wait indefinitely
//	record, err := q.Get(shmq.WaitForever)
//
// # Cross-Process Pipeline
//
//	// Process A (creator)
//	q, _ := shmq.New("pipeline").ElementSize(16).Capacity(4096).Create().Build()
//	defer q.Close()
//	for record := range produce() {
//	    if err := q.Put(record, shmq.WaitForever); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	// Process B (joiner, started any time after A's Build() returns)
//	q, _ := shmq.New("pipeline").Open().Build()
//	defer q.Close()
//	for {
//	    record, err := q.Get(shmq.WaitForever)
//	    if err != nil {
//	        continue
//	    }
//	    consume(record)
//	}
//
// # Error Handling
//
// PutNowait/GetNowait return [*QueueFullError]/[*QueueEmptyError] when
// they cannot proceed immediately. Both wrap
// [code.hybscloud.com/iox.ErrWouldBlock] for ecosystem consistency, so
// generic retry helpers built against iox keep working:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.PutNowait(record)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !shmq.IsWouldBlock(err) {
//	        return err // Unexpected error
//	    }
//	    backoff.Wait()
//	}
//
// For semantic error classification (delegates to iox):
//
//	shmq.IsWouldBlock(err)  // true if queue full/empty
//	shmq.IsSemantic(err)    // true if control flow signal
//	shmq.IsNonFailure(err)  // true if nil or IsWouldBlock(err)
//
// Construction and layout errors ([*InvalidParametersError],
// [*BufferTooSmallError], [*BufferMisalignedError],
// [*BufferSizeNotPowerOfTwoError], [*FailedCreateSharedMemoryError],
// [*FailedOpenSharedMemoryError]) are ordinary values returned from
// Builder.Build, never retried.
//
// # Capacity
//
// Capacity must already be a power of two, >= 2. Unlike some in-process
// lock-free queue builders, Capacity does not round up silently — a
// non-power-of-two capacity is rejected with
// [*BufferSizeNotPowerOfTwoError].
//
// # Multi-Process Safety
//
// The ring algorithm is safe for N producers / M consumers across
// distinct processes provided every participant agrees on element
// size, capacity, and the on-segment layout (spec.md §5). The platform
// must guarantee that atomic word-sized operations on the shared
// mapping are coherent across processes — true of mainstream OSes'
// standard POSIX shared memory, which is what Segment uses.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic acquire/release on separate
// variables, which is how the ring's per-slot sequence handshake works.
// Concurrent tests sensitive to this are skipped under -race via the
// [RaceEnabled] constant (see race.go/race_off.go).
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering (placed directly on the shared mapping's bytes, not
// on Go-heap fields), [code.hybscloud.com/spin] for CAS retry backoff,
// and golang.org/x/sys/unix for the named POSIX shared-memory segment
// and its construction-time advisory lock.
package shmq

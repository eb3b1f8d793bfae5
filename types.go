// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

// Producer is the non-blocking enqueue side of the external interface
// spec.md §6 describes: the seam a host-language binding layer
// (marshaling application objects to/from fixed-size byte records, and
// deliberately out of scope per spec.md §1) would sit behind.
//
// Generalizes the teacher's type-parameterized Producer[T] to the
// fixed-size byte records this module's on-segment layout requires.
type Producer interface {
	// PutNowait enqueues a record without blocking. item must be
	// exactly ElementSize() bytes.
	// Returns nil on success, a *QueueFullError if every slot is
	// occupied, or a *InvalidSourceLengthError on a length mismatch.
	PutNowait(item []byte) error
}

// Consumer is the non-blocking dequeue side of the external interface.
type Consumer interface {
	// GetNowait dequeues the next record without blocking.
	// Returns a *QueueEmptyError if every slot is free.
	GetNowait() ([]byte, error)
}

// ByteQueue is the combined producer-consumer interface Queue
// satisfies. It intentionally excludes the blocking Put/Get and
// lifecycle operations so a binding layer can depend on only the
// non-blocking core if that's all it needs.
type ByteQueue interface {
	Producer
	Consumer
	ElementSize() uint64
	MaxSize() uint64
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"unsafe"

	"code.hybscloud.com/spin"
)

// Ring is a CAS-based bounded multi-producer multi-consumer queue whose
// entire state — header, per-slot sequence numbers, and data region —
// lives in a caller-supplied byte region instead of Go-heap memory.
//
// Based on the same per-slot-sequence algorithm as the generic MPMCSeq
// queue this package is ported from, generalized from a Go slice of T
// to a raw []byte region so unrelated processes mapping the same named
// shared-memory segment can enqueue and dequeue element_size-byte
// records without any of them owning the backing allocation.
//
// The Ring itself borrows the region; it never allocates or frees it.
// Callers construct a Ring over memory obtained from a Segment (for
// cross-process use) or from a plain byte slice (for in-process tests).
type Ring struct {
	base        unsafe.Pointer
	length      uintptr
	header      *Header
	cellsBase   unsafe.Pointer
	dataBase    unsafe.Pointer
	elementSize uint64
	mask        uint64
}

// InitOn validates region's layout for the given elementSize and
// capacity, then either initializes it (create) or attaches to an
// already-initialized region (!create).
//
// capacity must be a power of two and >= 2; elementSize must be > 0.
// region must be at least RequiredSize(elementSize, capacity) bytes and
// must start at an address aligned to Header's natural alignment.
func InitOn(region []byte, elementSize, capacity uint64, create bool) (*Ring, error) {
	if elementSize == 0 {
		return nil, &InvalidParametersError{Reason: "element_size must be > 0"}
	}
	if capacity < 2 {
		return nil, &InvalidParametersError{Reason: "capacity must be >= 2"}
	}
	if !isPowerOfTwo(capacity) {
		return nil, &BufferSizeNotPowerOfTwoError{Actual: capacity}
	}

	required := RequiredSize(elementSize, capacity)
	if uint64(len(region)) < required {
		return nil, &BufferTooSmallError{Required: required, Provided: uint64(len(region))}
	}

	base := unsafe.Pointer(unsafe.SliceData(region))
	if uintptr(base)%headerAlign != 0 {
		return nil, &BufferMisalignedError{Expected: headerAlign, Actual: uintptr(base) % headerAlign}
	}

	cellsOffset := alignUp(headerSize, cellAlign)
	dataOffset := alignUp(cellsOffset+uintptr(capacity)*cellSize, 1)

	r := &Ring{
		base:        base,
		length:      uintptr(len(region)),
		header:      (*Header)(base),
		cellsBase:   unsafe.Add(base, cellsOffset),
		dataBase:    unsafe.Add(base, dataOffset),
		elementSize: elementSize,
		mask:        capacity - 1,
	}

	if create {
		r.header.magic.StoreRelease(headerMagic)
		r.header.elementSize.StoreRelease(elementSize)
		r.header.bufferMask.StoreRelease(capacity - 1)
		r.header.enqueuePos.StoreRelaxed(0)
		r.header.dequeuePos.StoreRelaxed(0)
		for i := uint64(0); i < capacity; i++ {
			r.cell(i).sequence.StoreRelaxed(i)
		}
	} else if got := r.header.magic.LoadAcquire(); got != headerMagic {
		return nil, &HeaderMagicMismatchError{Expected: headerMagic, Actual: got}
	}

	return r, nil
}

// Attach attaches to an already-initialized region, recovering
// elementSize and capacity from the header itself rather than from the
// caller, and verifying region is long enough to hold the layout the
// header describes. This is the joiner path of spec.md §3's lifecycle.
func Attach(region []byte) (*Ring, error) {
	if uintptr(len(region)) < headerSize {
		return nil, &BufferTooSmallError{Required: uint64(headerSize), Provided: uint64(len(region))}
	}
	base := unsafe.Pointer(unsafe.SliceData(region))
	if uintptr(base)%headerAlign != 0 {
		return nil, &BufferMisalignedError{Expected: headerAlign, Actual: uintptr(base) % headerAlign}
	}
	hdr := (*Header)(base)
	elementSize := hdr.elementSize.LoadAcquire()
	capacity := hdr.bufferMask.LoadAcquire() + 1

	return InitOn(region, elementSize, capacity, false)
}

func (r *Ring) cell(idx uint64) *cell {
	return (*cell)(unsafe.Add(r.cellsBase, uintptr(idx)*cellSize))
}

func (r *Ring) slot(idx uint64) []byte {
	ptr := unsafe.Add(r.dataBase, uintptr(idx)*uintptr(r.elementSize))
	return unsafe.Slice((*byte)(ptr), r.elementSize)
}

// ElementSize returns the fixed per-record byte length.
func (r *Ring) ElementSize() uint64 { return r.elementSize }

// Capacity returns the number of usable slots.
func (r *Ring) Capacity() uint64 { return r.mask + 1 }

// HeaderView returns a read-only snapshot of the header's fixed fields.
func (r *Ring) HeaderView() (elementSize, capacity uint64) {
	return r.header.elementSize.LoadAcquire(), r.header.bufferMask.LoadAcquire() + 1
}

// Len returns an estimate of the current occupancy: enqueuePos -
// dequeuePos, saturated at zero to tolerate in-flight races. Per
// spec.md §4.3, this may over- or under-count by the number of
// currently in-flight operations.
func (r *Ring) Len() uint64 {
	enq := r.header.enqueuePos.LoadAcquire()
	deq := r.header.dequeuePos.LoadAcquire()
	if enq < deq {
		return 0
	}
	return enq - deq
}

// Enqueue copies src into the next available slot. src must be exactly
// ElementSize() bytes. Returns a *QueueFullError if no slot is free.
func (r *Ring) Enqueue(src []byte) error {
	if uint64(len(src)) != r.elementSize {
		return &InvalidSourceLengthError{Expected: r.elementSize, Actual: uint64(len(src))}
	}

	sw := spin.Wait{}
	for {
		pos := r.header.enqueuePos.LoadRelaxed()
		idx := pos & r.mask
		c := r.cell(idx)
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos)

		if diff == 0 {
			if r.header.enqueuePos.CompareAndSwapRelaxed(pos, pos+1) {
				copy(r.slot(idx), src)
				c.sequence.StoreRelease(pos + 1)
				return nil
			}
		} else if diff < 0 {
			return &QueueFullError{}
		}
		sw.Once()
	}
}

// Dequeue copies the next available element into dst. dst must be
// exactly ElementSize() bytes. Returns a *QueueEmptyError if no element
// is available.
func (r *Ring) Dequeue(dst []byte) error {
	if uint64(len(dst)) != r.elementSize {
		return &InvalidDestinationLengthError{Expected: r.elementSize, Actual: uint64(len(dst))}
	}

	sw := spin.Wait{}
	for {
		pos := r.header.dequeuePos.LoadRelaxed()
		idx := pos & r.mask
		c := r.cell(idx)
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos+1)

		if diff == 0 {
			if r.header.dequeuePos.CompareAndSwapRelaxed(pos, pos+1) {
				copy(dst, r.slot(idx))
				c.sequence.StoreRelease(pos + r.mask + 1)
				return nil
			}
		} else if diff < 0 {
			return &QueueEmptyError{}
		}
		sw.Once()
	}
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// headerMagic identifies a region as holding a shmq ring, to catch a
// stale or foreign segment at attach time before anything touches its
// cells or data. Value and role ported from original_source/src/lib.rs's
// HEADER_MAGIC/Header.magic.
const headerMagic uint64 = 0xDEAD_BEEF_CAFE_BABE

// Header sits at offset 0 of the shared region. Every field is a single
// aligned machine word so that atomic operations on it are coherent
// across unrelated address spaces mapping the same region. No padding
// is inserted between fields: Data begins immediately after Cells[N-1],
// and Header's own fields are laid out back to back as one contiguous
// run of machine words.
//
// Layout is fixed once written by the creator: magic, elementSize, and
// bufferMask never change after init; enqueuePos and dequeuePos are the
// only fields mutated by enqueue/dequeue.
type Header struct {
	magic       atomix.Uint64
	elementSize atomix.Uint64
	bufferMask  atomix.Uint64
	enqueuePos  atomix.Uint64
	dequeuePos  atomix.Uint64
}

// cell is the per-slot sequence word. One cell exists per ring slot,
// immediately following the Header in the shared region.
type cell struct {
	sequence atomix.Uint64
}

const headerSize = unsafe.Sizeof(Header{})
const cellSize = unsafe.Sizeof(cell{})
const headerAlign = unsafe.Alignof(Header{})
const cellAlign = unsafe.Alignof(cell{})

// alignUp rounds offset up to the nearest multiple of align (a power of two).
func alignUp(offset, align uintptr) uintptr {
	return (offset + align - 1) &^ (align - 1)
}

// isPowerOfTwo reports whether n is a power of two, n >= 2.
func isPowerOfTwo(n uint64) bool {
	return n >= 2 && n&(n-1) == 0
}

// RequiredSize computes the minimum byte length of the shared region
// needed to hold a ring of the given elementSize and capacity. It is a
// pure function of its arguments: two independent calls with the same
// inputs always return the same value.
//
// capacity must already be a power of two and >= 2; callers that need
// to validate untrusted input should call isPowerOfTwo themselves
// (InitOn does this for them and returns BufferSizeNotPowerOfTwoError).
func RequiredSize(elementSize, capacity uint64) uint64 {
	cellsOffset := alignUp(headerSize, cellAlign)
	cellsSize := uintptr(capacity) * cellSize
	dataOffset := alignUp(cellsOffset+cellsSize, 1)
	dataSize := uintptr(capacity) * uintptr(elementSize)
	return uint64(dataOffset + dataSize)
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

// Builder configures and creates a Queue with a fluent API.
//
// Builder generalizes the teacher's algorithm-selecting builder
// (SingleProducer/SingleConsumer/Compact choosing among SPSC/MPSC/
// SPMC/MPMC) into a segment-lifecycle-and-layout builder: this package
// implements exactly one ring algorithm, so the axis of configuration
// is whether the named segment is created or opened, and at what
// element size and capacity.
//
// Example:
//
//	// Creator
//	q, err := shmq.New("orders").ElementSize(64).Capacity(1024).Create().Build()
//
//	// Joiner
//	q, err := shmq.New("orders").Open().Build()
type Builder struct {
	name        string
	elementSize uint64
	capacity    uint64
	create      bool
	createSet   bool
}

// New creates a queue builder for the named shared-memory segment.
func New(name string) *Builder {
	return &Builder{name: name}
}

// ElementSize sets the per-record byte length. Required when Create()
// is selected; ignored when Open() is selected (recovered from the
// segment's header instead).
func (b *Builder) ElementSize(n uint64) *Builder {
	b.elementSize = n
	return b
}

// Capacity sets the number of slots. Must be a power of two and >= 2.
// Required when Create() is selected; ignored when Open() is selected.
//
// Unlike the teacher's New(capacity), Capacity does not round up to
// the next power of two: spec.md requires rejecting a non-power-of-two
// capacity outright (BufferSizeNotPowerOfTwoError), not silently
// adjusting it.
func (b *Builder) Capacity(n uint64) *Builder {
	b.capacity = n
	return b
}

// Create selects the creator lifecycle: allocate a new named segment
// and initialize the ring. Fails if the name already exists.
func (b *Builder) Create() *Builder {
	b.create = true
	b.createSet = true
	return b
}

// Open selects the joiner lifecycle: attach to an existing named
// segment, recovering element size and capacity from its header.
func (b *Builder) Open() *Builder {
	b.create = false
	b.createSet = true
	return b
}

// Build constructs the Queue. Returns an *InvalidParametersError if
// neither Create() nor Open() was selected, or if Create() was
// selected without both ElementSize() and Capacity().
func (b *Builder) Build() (*Queue, error) {
	if !b.createSet {
		return nil, &InvalidParametersError{Reason: "must call Create() or Open()"}
	}
	if b.create {
		if b.elementSize == 0 {
			return nil, &InvalidParametersError{Reason: "element_size required when create=true"}
		}
		if b.capacity == 0 {
			return nil, &InvalidParametersError{Reason: "capacity required when create=true"}
		}
	}
	return newQueue(b.name, b.elementSize, b.capacity, b.create)
}

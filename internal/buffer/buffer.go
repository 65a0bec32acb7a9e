// internal/buffer/buffer.go
package buffer

import (
	"errors"
	"sync"
)

const (
	// DefaultCapacity matches the ADC buffer on the device
	DefaultCapacity = 32768
	// MaxSample is the largest 12-bit ADC code
	MaxSample Sample = 4095
)

// ErrInvalidCapacity indicates capacity must be a positive power of two
var ErrInvalidCapacity = errors.New("buffer capacity must be a positive power of two")

// Sample is a raw 12-bit ADC code in [0, MaxSample].
type Sample uint16

// Buffer is a fixed-capacity circular FIFO bridging the sampling interrupt
// and the detector. A push into a full buffer drops the oldest unread sample,
// so the producer never blocks.
//
// PushOverwrite, Pop and Count touch the indices without locking. Any caller
// that can run concurrently with the other side must hold the critical
// section (Lock/Unlock) around those calls.
type Buffer struct {
	mu sync.Mutex

	data      []Sample
	mask      uint32
	indexIn   uint32 // next open slot
	indexOut  uint32 // next element to be removed
	count     uint32
	overflows uint64
}

// New creates an empty buffer holding capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrInvalidCapacity
	}
	return &Buffer{
		data: make([]Sample, capacity),
		mask: uint32(capacity - 1),
	}, nil
}

// Init resets the buffer to empty and zero-fills the storage.
func (b *Buffer) Init() {
	b.indexIn = 0
	b.indexOut = 0
	b.count = 0
	b.overflows = 0
	clear(b.data)
}

// PushOverwrite adds a sample, overwriting the oldest one if full.
func (b *Buffer) PushOverwrite(s Sample) {
	b.data[b.indexIn] = s
	b.indexIn = (b.indexIn + 1) & b.mask
	if b.count < uint32(len(b.data)) {
		b.count++
		return
	}
	b.indexOut = (b.indexOut + 1) & b.mask
	b.overflows++
}

// Pop removes the oldest sample. It returns 0 and leaves the buffer
// untouched when empty.
func (b *Buffer) Pop() Sample {
	if b.count == 0 {
		return 0
	}
	s := b.data[b.indexOut]
	b.indexOut = (b.indexOut + 1) & b.mask
	b.count--
	return s
}

// Count returns the number of unread samples.
func (b *Buffer) Count() int {
	return int(b.count)
}

// Capacity returns the fixed size of the buffer in samples.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Overflows returns how many samples were dropped because the buffer was full.
func (b *Buffer) Overflows() uint64 {
	return b.overflows
}

// Lock enters the critical section shared by the producer and the detector.
// Hold it for as few operations as possible: it stalls the producer.
func (b *Buffer) Lock() {
	b.mu.Lock()
}

// Unlock leaves the critical section.
func (b *Buffer) Unlock() {
	b.mu.Unlock()
}

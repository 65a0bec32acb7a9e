// internal/queue/queue.go
package queue

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidCapacity indicates capacity must be positive
	ErrInvalidCapacity = errors.New("queue capacity must be positive")
	// ErrIndexOutOfRange indicates a read beyond the retained window
	ErrIndexOutOfRange = errors.New("queue index out of range")
)

// Reader is the read-only view of a History handed out for verification.
type Reader[T any] interface {
	Name() string
	Size() int
	ReadAt(offset int) (T, error)
	// Values returns a copy of the retained elements, oldest first.
	Values() []T
}

// History is a fixed-capacity sliding window over a stream. It always holds
// exactly Size() elements; pushing discards the logically oldest one.
//
// Every element is stored twice, at slot i and i+capacity, so the retained
// window is always available as one contiguous slice.
type History[T any] struct {
	name     string
	capacity int
	data     []T
	head     int // slot of the oldest element
}

// New creates a History of the given capacity pre-filled with fill.
func New[T any](name string, capacity int, fill T) (*History[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	h := &History[T]{
		name:     name,
		capacity: capacity,
		data:     make([]T, 2*capacity),
	}
	h.Fill(fill)
	return h, nil
}

// MustNew is New for fixed, known-good capacities.
func MustNew[T any](name string, capacity int, fill T) *History[T] {
	h, err := New(name, capacity, fill)
	if err != nil {
		panic(fmt.Sprintf("queue %q: %v", name, err))
	}
	return h
}

// Fill overwrites every element with v.
func (h *History[T]) Fill(v T) {
	for i := range h.data {
		h.data[i] = v
	}
	h.head = 0
}

// PushOverwrite appends v as the newest element, discarding the oldest.
func (h *History[T]) PushOverwrite(v T) {
	h.data[h.head] = v
	h.data[h.head+h.capacity] = v
	h.head++
	if h.head == h.capacity {
		h.head = 0
	}
}

// ReadAt returns the element offset pushes behind the most recent one:
// offset 0 is the newest, Size()-1 the oldest.
func (h *History[T]) ReadAt(offset int) (T, error) {
	if offset < 0 || offset >= h.capacity {
		var zero T
		return zero, fmt.Errorf("%w: %q offset %d, size %d", ErrIndexOutOfRange, h.name, offset, h.capacity)
	}
	return h.At(offset), nil
}

// At is ReadAt without the range check, for hot paths that already know
// offset is valid. An invalid offset panics.
func (h *History[T]) At(offset int) T {
	if offset < 0 || offset >= h.capacity {
		panic(fmt.Errorf("%w: %q offset %d, size %d", ErrIndexOutOfRange, h.name, offset, h.capacity))
	}
	return h.data[h.head+h.capacity-1-offset]
}

// Oldest returns the element about to be discarded by the next push.
func (h *History[T]) Oldest() T {
	return h.data[h.head]
}

// Window returns the retained elements ordered oldest to newest. The slice
// aliases internal storage and is only valid until the next push.
func (h *History[T]) Window() []T {
	return h.data[h.head : h.head+h.capacity]
}

// Values returns a copy of Window that stays valid across pushes.
func (h *History[T]) Values() []T {
	return slices.Clone(h.Window())
}

// View returns a Reader over h that cannot be asserted back to the History.
func (h *History[T]) View() Reader[T] {
	return view[T]{h: h}
}

type view[T any] struct{ h *History[T] }

func (v view[T]) Name() string                 { return v.h.Name() }
func (v view[T]) Size() int                    { return v.h.Size() }
func (v view[T]) ReadAt(offset int) (T, error) { return v.h.ReadAt(offset) }
func (v view[T]) Values() []T                  { return v.h.Values() }

// Size returns the fixed number of retained elements.
func (h *History[T]) Size() int {
	return h.capacity
}

// Name returns the label given at construction.
func (h *History[T]) Name() string {
	return h.name
}

package buffer

import (
	"sync"
	"testing"
)

func newTestBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	b, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d) error = %v", capacity, err)
	}
	return b
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -8, 3, 100, 32767} {
		if _, err := New(capacity); err != ErrInvalidCapacity {
			t.Errorf("New(%d) error = %v, want ErrInvalidCapacity", capacity, err)
		}
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	b := newTestBuffer(t, DefaultCapacity)
	if b.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", b.Capacity(), DefaultCapacity)
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}

func TestBuffer_FIFOAtCapacity(t *testing.T) {
	const capacity = 16
	b := newTestBuffer(t, capacity)

	for i := 0; i < capacity; i++ {
		b.PushOverwrite(Sample(100 + i))
	}
	if b.Count() != capacity {
		t.Fatalf("Count() = %d, want %d", b.Count(), capacity)
	}
	for i := 0; i < capacity; i++ {
		if got := b.Pop(); got != Sample(100+i) {
			t.Errorf("Pop() #%d = %d, want %d", i, got, 100+i)
		}
	}
	if b.Count() != 0 {
		t.Errorf("Count() after drain = %d, want 0", b.Count())
	}
}

func TestBuffer_OverwriteKeepsNewest(t *testing.T) {
	const capacity = 8
	tests := []int{1, 3, capacity, 2*capacity + 5}

	for _, k := range tests {
		b := newTestBuffer(t, capacity)
		total := capacity + k
		for i := 0; i < total; i++ {
			b.PushOverwrite(Sample(i))
		}
		if b.Count() != capacity {
			t.Fatalf("k=%d: Count() = %d, want %d", k, b.Count(), capacity)
		}
		if b.Overflows() != uint64(k) {
			t.Errorf("k=%d: Overflows() = %d, want %d", k, b.Overflows(), k)
		}
		for i := 0; i < capacity; i++ {
			want := Sample(k + i)
			if got := b.Pop(); got != want {
				t.Errorf("k=%d: Pop() #%d = %d, want %d", k, i, got, want)
			}
		}
	}
}

func TestBuffer_PopEmpty(t *testing.T) {
	b := newTestBuffer(t, 4)
	if got := b.Pop(); got != 0 {
		t.Errorf("Pop() on empty = %d, want 0", got)
	}
	if b.Count() != 0 {
		t.Errorf("Count() after empty pop = %d, want 0", b.Count())
	}

	// An empty pop must not disturb later FIFO order.
	b.PushOverwrite(7)
	b.PushOverwrite(9)
	if got := b.Pop(); got != 7 {
		t.Errorf("Pop() = %d, want 7", got)
	}
	if got := b.Pop(); got != 9 {
		t.Errorf("Pop() = %d, want 9", got)
	}
	if got := b.Pop(); got != 0 {
		t.Errorf("Pop() on drained = %d, want 0", got)
	}
}

func TestBuffer_WrapAround(t *testing.T) {
	b := newTestBuffer(t, 4)
	next := Sample(0)
	want := Sample(0)
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			b.PushOverwrite(next)
			next++
		}
		for i := 0; i < 3; i++ {
			if got := b.Pop(); got != want {
				t.Fatalf("round %d: Pop() = %d, want %d", round, got, want)
			}
			want++
		}
	}
}

func TestBuffer_Init(t *testing.T) {
	b := newTestBuffer(t, 4)
	for i := 0; i < 6; i++ {
		b.PushOverwrite(MaxSample)
	}
	b.Init()
	if b.Count() != 0 || b.Overflows() != 0 {
		t.Errorf("after Init: Count() = %d, Overflows() = %d, want 0, 0", b.Count(), b.Overflows())
	}
	for i, s := range b.data {
		if s != 0 {
			t.Errorf("data[%d] = %d after Init, want 0", i, s)
		}
	}
}

func TestBuffer_ConcurrentProducerConsumer(t *testing.T) {
	const total = 50000
	b := newTestBuffer(t, 1024)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			b.Lock()
			b.PushOverwrite(Sample(i % 4096))
			b.Unlock()
		}
	}()

	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	drain := func() {
		b.Lock()
		n := b.Count()
		b.Unlock()
		for i := 0; i < n; i++ {
			b.Lock()
			b.Pop()
			b.Unlock()
			received++
		}
	}

	for {
		select {
		case <-done:
			drain()
			if uint64(received)+b.Overflows() != total {
				t.Errorf("received %d + dropped %d != %d", received, b.Overflows(), total)
			}
			return
		default:
			drain()
		}
	}
}

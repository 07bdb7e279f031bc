// Package history keeps the most recent samples for graphs.
package history

import (
	"sync"

	"github.com/robotalks/adclink/pkg/frame"
)

// DefaultSize is the default number of entries kept.
const DefaultSize = 100

// ring is a fixed size FIFO; the oldest entry is evicted when full.
type ring[T any] struct {
	items []T
	head  int
	size  int
}

func newRing[T any](size int) ring[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return ring[T]{items: make([]T, size)}
}

func (r *ring[T]) push(v T) {
	r.items[(r.head+r.size)%len(r.items)] = v
	if r.size < len(r.items) {
		r.size++
	} else {
		r.head = (r.head + 1) % len(r.items)
	}
}

func (r *ring[T]) slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

func (r *ring[T]) last() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.items[(r.head+r.size-1)%len(r.items)], true
}

func (r *ring[T]) reset() {
	r.head, r.size = 0, 0
}

// Buffer is a bounded FIFO of samples, oldest first.
type Buffer struct {
	lock sync.RWMutex
	ring ring[frame.Sample]
}

// NewBuffer creates a Buffer keeping up to size samples.
func NewBuffer(size int) *Buffer {
	return &Buffer{ring: newRing[frame.Sample](size)}
}

// Append adds a sample, evicting the oldest one when full.
func (b *Buffer) Append(s frame.Sample) {
	b.lock.Lock()
	b.ring.push(s)
	b.lock.Unlock()
}

// Cap returns the capacity.
func (b *Buffer) Cap() int {
	return len(b.ring.items)
}

// Len returns the number of samples held.
func (b *Buffer) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.ring.size
}

// Samples returns a copy of the samples, oldest first.
func (b *Buffer) Samples() []frame.Sample {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.ring.slice()
}

// Last returns the newest sample.
func (b *Buffer) Last() (frame.Sample, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.ring.last()
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.lock.Lock()
	b.ring.reset()
	b.lock.Unlock()
}

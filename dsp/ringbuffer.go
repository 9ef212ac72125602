package dsp

// DoubleRingBuffer is a single-producer/single-consumer FIFO whose storage is
// mirrored so that the readable region and the writable region are always
// exposed as one contiguous slice. It is not safe for concurrent use; the
// voice owns both ends on the audio thread.
//
// start and end count frames. Their difference is the occupancy and never
// exceeds the capacity.
type DoubleRingBuffer[T any] struct {
	data  []T
	size  int
	mask  int
	start int
	end   int
}

// NewDoubleRingBuffer returns an empty buffer holding up to capacity
// elements. The capacity is rounded up to a power of two.
func NewDoubleRingBuffer[T any](capacity int) *DoubleRingBuffer[T] {
	n := nextPow2(max(capacity, 1))
	return &DoubleRingBuffer[T]{
		data: make([]T, 2*n),
		size: n,
		mask: n - 1,
	}
}

// Cap returns the fixed number of elements the buffer can hold.
func (b *DoubleRingBuffer[T]) Cap() int { return b.size }

// Size returns the number of readable elements.
func (b *DoubleRingBuffer[T]) Size() int { return b.end - b.start }

// Capacity returns the number of writable slots.
func (b *DoubleRingBuffer[T]) Capacity() int { return b.size - b.Size() }

// Empty reports whether there is nothing to read.
func (b *DoubleRingBuffer[T]) Empty() bool { return b.start == b.end }

// Full reports whether there is no room left to write.
func (b *DoubleRingBuffer[T]) Full() bool { return b.Size() == b.size }

// Push appends v. It reports false and drops v when the buffer is full.
func (b *DoubleRingBuffer[T]) Push(v T) bool {
	if b.Full() {
		return false
	}
	i := b.end & b.mask
	b.data[i] = v
	b.data[i+b.size] = v
	b.end++
	return true
}

// Shift removes and returns the oldest element. On an empty buffer it
// returns the zero value and false.
func (b *DoubleRingBuffer[T]) Shift() (T, bool) {
	var zero T
	if b.Empty() {
		return zero, false
	}
	v := b.data[b.start&b.mask]
	b.StartIncr(1)
	return v, true
}

// StartData exposes all readable elements, oldest first, as one slice. The
// slice aliases internal storage and is valid until the next write.
func (b *DoubleRingBuffer[T]) StartData() []T {
	i := b.start & b.mask
	return b.data[i : i+b.Size()]
}

// StartIncr discards n elements from the read side. n is clamped to Size.
func (b *DoubleRingBuffer[T]) StartIncr(n int) {
	n = min(max(n, 0), b.Size())
	b.start += n
	if b.start >= b.size {
		b.start -= b.size
		b.end -= b.size
	}
}

// EndData exposes all writable slots as one slice. Elements written there
// become readable after EndIncr.
func (b *DoubleRingBuffer[T]) EndData() []T {
	i := b.end & b.mask
	return b.data[i : i+b.Capacity()]
}

// EndIncr commits n elements written through EndData. n is clamped to
// Capacity.
func (b *DoubleRingBuffer[T]) EndIncr(n int) {
	n = min(max(n, 0), b.Capacity())
	e := b.end & b.mask
	e1 := e + n
	e2 := min(e1, b.size)
	// Mirror the part below the seam forward, then the wrapped part back.
	copy(b.data[b.size+e:b.size+e2], b.data[e:e2])
	if e1 > b.size {
		copy(b.data[:e1-b.size], b.data[b.size:e1])
	}
	b.end += n
}

// Clear empties the buffer.
func (b *DoubleRingBuffer[T]) Clear() {
	b.start = 0
	b.end = 0
}

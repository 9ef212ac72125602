package dsp

import "testing"

func TestDoubleRingBufferRoundsCapacity(t *testing.T) {
	b := NewDoubleRingBuffer[int](100)
	if b.Cap() != 128 {
		t.Fatalf("Cap() = %d, want 128", b.Cap())
	}
	if !b.Empty() || b.Full() || b.Size() != 0 || b.Capacity() != 128 {
		t.Fatalf("new buffer not empty: size=%d capacity=%d", b.Size(), b.Capacity())
	}
}

func TestDoubleRingBufferPushShiftFIFO(t *testing.T) {
	b := NewDoubleRingBuffer[int](4)
	for i := 0; i < 4; i++ {
		if !b.Push(i) {
			t.Fatalf("Push(%d) rejected", i)
		}
	}
	if !b.Full() {
		t.Fatalf("expected full buffer")
	}
	if b.Push(99) {
		t.Fatalf("Push on full buffer must be rejected")
	}
	for i := 0; i < 4; i++ {
		v, ok := b.Shift()
		if !ok || v != i {
			t.Fatalf("Shift() = %d,%v want %d,true", v, ok, i)
		}
	}
	if _, ok := b.Shift(); ok {
		t.Fatalf("Shift on empty buffer must report false")
	}
}

func TestDoubleRingBufferContiguousAcrossWrap(t *testing.T) {
	b := NewDoubleRingBuffer[int](8)
	next := 0
	want := 0
	for round := 0; round < 50; round++ {
		// Write an uneven chunk through EndData so the seam moves around.
		chunk := (round*3)%7 + 1
		w := b.EndData()
		n := min(chunk, len(w))
		for i := 0; i < n; i++ {
			w[i] = next
			next++
		}
		b.EndIncr(n)

		if b.Size() > b.Cap() {
			t.Fatalf("size %d exceeds capacity %d", b.Size(), b.Cap())
		}
		r := b.StartData()
		if len(r) != b.Size() {
			t.Fatalf("StartData length %d, size %d", len(r), b.Size())
		}
		for i, v := range r {
			if v != want+i {
				t.Fatalf("round %d: StartData[%d] = %d, want %d", round, i, v, want+i)
			}
		}
		drop := min((round*5)%6+1, len(r))
		b.StartIncr(drop)
		want += drop
	}
}

func TestDoubleRingBufferMixedPushAndEndData(t *testing.T) {
	b := NewDoubleRingBuffer[Frame](4)
	b.Push(Frame{1, -1})
	b.Push(Frame{2, -2})
	b.Push(Frame{3, -3})
	b.StartIncr(3)

	w := b.EndData()
	if len(w) != 4 {
		t.Fatalf("EndData length %d, want 4", len(w))
	}
	for i := range w {
		w[i] = Frame{float32(10 + i), float32(-10 - i)}
	}
	b.EndIncr(4)

	r := b.StartData()
	for i := range r {
		if r[i][0] != float32(10+i) || r[i][1] != float32(-10-i) {
			t.Fatalf("frame %d = %v", i, r[i])
		}
	}
}

func TestDoubleRingBufferIncrementsClamp(t *testing.T) {
	b := NewDoubleRingBuffer[int](4)
	b.EndIncr(10)
	if b.Size() != 4 {
		t.Fatalf("EndIncr beyond capacity: size %d", b.Size())
	}
	b.StartIncr(10)
	if !b.Empty() {
		t.Fatalf("StartIncr beyond size left %d elements", b.Size())
	}
	b.StartIncr(-3)
	b.EndIncr(-3)
	if !b.Empty() {
		t.Fatalf("negative increments must be ignored")
	}
}

func TestDoubleRingBufferClear(t *testing.T) {
	b := NewDoubleRingBuffer[int](4)
	b.Push(1)
	b.Push(2)
	b.Clear()
	if !b.Empty() || b.Capacity() != 4 {
		t.Fatalf("Clear left size=%d", b.Size())
	}
}

// Package ring provides a reusable byte buffer for a stream's read
// side, so each read-loop restart resizes without allocating when the
// underlying array is already large enough.
package ring

// Buffer holds a single growable byte slice that Reset repositions
// to a requested size, reusing the backing array across policy resets.
type Buffer struct {
	buf []byte
}

// Reset returns a []byte of exactly size bytes, reusing the existing
// backing array when its capacity already covers size.
func (b *Buffer) Reset(size int) []byte {
	if cap(b.buf) < size {
		b.buf = make([]byte, size)
	} else {
		b.buf = b.buf[:size]
	}
	return b.buf
}

// Len reports the buffer's current length.
func (b *Buffer) Len() int { return len(b.buf) }

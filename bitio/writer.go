package bitio

import "fmt"

// Writer accumulates values as a bit stream.
// The zero Writer is empty and ready to use.
type Writer struct {
	buf   []byte
	nbits int
}

// WriteBool appends a single bit.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeBit(1)
	} else {
		w.writeBit(0)
	}
}

// WriteUint appends the n least-significant bits of v, most significant
// first. n must be in [1,64] and v must fit in n bits.
func (w *Writer) WriteUint(v uint64, n int) error {
	if n < 1 || n > 64 {
		return NewError(ErrRange, fmt.Sprintf("bit width must be 1-64, got %v", n))
	}
	if n < 64 && v > (1<<uint(n))-1 {
		return NewError(ErrRange, fmt.Sprintf("value %v doesn't fit in %v bits (max %v)", v, n, uint64(1)<<uint(n)-1))
	}

	for i := n - 1; i >= 0; i-- {
		w.writeBit(byte(v >> uint(i) & 1))
	}
	return nil
}

// WriteInt appends an n-bit two's-complement representation of v.
// n must be in [2,64] and v must be in [-2^(n-1), 2^(n-1)-1].
func (w *Writer) WriteInt(v int64, n int) error {
	if n < 2 || n > 64 {
		return NewError(ErrRange, fmt.Sprintf("bit width must be 2-64 for signed integers, got %v", n))
	}
	if n < 64 {
		min := -(int64(1) << uint(n-1))
		max := int64(1)<<uint(n-1) - 1
		if v < min || v > max {
			return NewError(ErrRange, fmt.Sprintf("value %v doesn't fit in %v bits (range %v to %v)", v, n, min, max))
		}
	}

	mask := ^uint64(0) >> uint(64-n)
	for i := n - 1; i >= 0; i-- {
		w.writeBit(byte(uint64(v) & mask >> uint(i) & 1))
	}
	return nil
}

// WriteBytes appends each byte of p as 8 bits.
func (w *Writer) WriteBytes(p []byte) {
	if w.nbits%8 == 0 {
		w.buf = append(w.buf, p...)
		w.nbits += len(p) * 8
		return
	}
	for _, b := range p {
		for i := 7; i >= 0; i-- {
			w.writeBit(b >> uint(i) & 1)
		}
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return w.nbits
}

// Bytes returns the accumulated bits, right-padded with zero bits to the
// next byte boundary. The writer remains usable; further writes continue
// from the unpadded bit position.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

// Reset discards all written bits.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.nbits = 0
}

func (w *Writer) writeBit(bit byte) {
	if w.nbits%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if bit != 0 {
		w.buf[len(w.buf)-1] |= 0x80 >> uint(w.nbits%8)
	}
	w.nbits++
}

package bitio

import "fmt"

// NewReader returns a Reader consuming the bits of p, most significant
// bit of each byte first. It does not copy p.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// Reader consumes a bit stream written by Writer.
type Reader struct {
	buf []byte
	pos int
}

// ReadBool reads a single bit.
func (r *Reader) ReadBool() (bool, error) {
	if r.Remaining() < 1 {
		return false, NewError(ErrTruncated, "need 1 bit, have 0")
	}
	return r.readBit() == 1, nil
}

// ReadUint reads an n-bit unsigned integer. n must be in [1,64].
func (r *Reader) ReadUint(n int) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, NewError(ErrRange, fmt.Sprintf("bit width must be 1-64, got %v", n))
	}
	if r.Remaining() < n {
		return 0, NewError(ErrTruncated, fmt.Sprintf("need %v bits, have %v", n, r.Remaining()))
	}

	var v uint64
	for i := 0; i < n; i++ {
		v = v<<1 | uint64(r.readBit())
	}
	return v, nil
}

// ReadInt reads an n-bit two's-complement signed integer, reconstructing
// the sign from the top bit of the window. n must be in [2,64].
func (r *Reader) ReadInt(n int) (int64, error) {
	if n < 2 || n > 64 {
		return 0, NewError(ErrRange, fmt.Sprintf("bit width must be 2-64 for signed integers, got %v", n))
	}

	u, err := r.ReadUint(n)
	if err != nil {
		return 0, err
	}

	if n < 64 && u&(1<<uint(n-1)) != 0 {
		return int64(u) - int64(1)<<uint(n), nil
	}
	return int64(u), nil
}

// ReadBytes reads k bytes. k must be at least 1.
func (r *Reader) ReadBytes(k int) ([]byte, error) {
	if k < 1 {
		return nil, NewError(ErrRange, fmt.Sprintf("byte count must be at least 1, got %v", k))
	}
	if r.Remaining() < k*8 {
		return nil, NewError(ErrTruncated, fmt.Sprintf("need %v bytes, have %v bits", k, r.Remaining()))
	}

	out := make([]byte, k)
	if r.pos%8 == 0 {
		copy(out, r.buf[r.pos/8:])
		r.pos += k * 8
		return out, nil
	}
	for i := range out {
		u, _ := r.ReadUint(8)
		out[i] = byte(u)
	}
	return out, nil
}

// Pos returns the current read position in bits.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.buf)*8 - r.pos
}

func (r *Reader) readBit() byte {
	bit := r.buf[r.pos/8] >> uint(7-r.pos%8) & 1
	r.pos++
	return bit
}

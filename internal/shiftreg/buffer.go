package shiftreg

import "strings"

// BitBuffer is a fixed-length vector of pin levels, one per logical pin.
// Index validity is the caller's job; out of range indexes panic like a
// slice access.
type BitBuffer struct {
	bits []bool
}

// NewBitBuffer returns a buffer of n bits, all low.
func NewBitBuffer(n int) *BitBuffer {
	return &BitBuffer{bits: make([]bool, n)}
}

// Get returns the level stored at index.
func (b *BitBuffer) Get(index int) bool {
	return b.bits[index]
}

// Set stores level at index.
func (b *BitBuffer) Set(index int, level bool) {
	b.bits[index] = level
}

// Len returns the number of bits.
func (b *BitBuffer) Len() int {
	return len(b.bits)
}

// Bits returns a copy of the levels in index order.
func (b *BitBuffer) Bits() []bool {
	out := make([]bool, len(b.bits))
	copy(out, b.bits)
	return out
}

// String renders the buffer as 0/1 digits in index order, one group of
// eight per chip.
func (b *BitBuffer) String() string {
	var sb strings.Builder
	for i, v := range b.bits {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

package goap

import "math/bits"

// BitSetWidth is the fixed number of flags in a BitSet.
const BitSetWidth = 64

// BitSet is a fixed-width set of 64 boolean flags addressed by atom index.
// The zero value is the empty set.
//
// Precondition: every idx passed to a BitSet method is in [0, BitSetWidth).
type BitSet uint64

const (
	// EmptyBitSet has every flag cleared.
	EmptyBitSet BitSet = 0
	// FullBitSet has every flag set.
	FullBitSet BitSet = ^BitSet(0)
)

// Set writes value at idx.
func (b *BitSet) Set(idx int, value bool) {
	if value {
		b.Enable(idx)
		return
	}
	b.Disable(idx)
}

// Enable sets the flag at idx.
func (b *BitSet) Enable(idx int) {
	*b |= 1 << uint(idx)
}

// Disable clears the flag at idx.
func (b *BitSet) Disable(idx int) {
	*b &^= 1 << uint(idx)
}

// Get reports whether the flag at idx is set.
func (b BitSet) Get(idx int) bool {
	return b&(1<<uint(idx)) != 0
}

// Count returns the number of set flags.
func (b BitSet) Count() int {
	return bits.OnesCount64(uint64(b))
}

// And returns the intersection of b and o.
func (b BitSet) And(o BitSet) BitSet { return b & o }

// Or returns the union of b and o.
func (b BitSet) Or(o BitSet) BitSet { return b | o }

// Xor returns the symmetric difference of b and o.
func (b BitSet) Xor(o BitSet) BitSet { return b ^ o }

// Not returns the complement of b.
func (b BitSet) Not() BitSet { return ^b }

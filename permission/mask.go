package permission

import "math/bits"

// Mask is a set of permission bits.
type Mask uint64

func (m Mask) Has(bit int) bool {
	if bit < 0 || bit >= MaxPermissions {
		return false
	}
	return m&(1<<bit) != 0
}

func (m *Mask) Set(bit int) {
	if bit < 0 || bit >= MaxPermissions {
		return
	}
	*m |= 1 << bit
}

func (m *Mask) Clear(bit int) {
	if bit < 0 || bit >= MaxPermissions {
		return
	}
	*m &^= 1 << bit
}

// Count returns the number of set bits.
func (m Mask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Contains reports whether every bit of other is set in m.
func (m Mask) Contains(other Mask) bool {
	return m&other == other
}

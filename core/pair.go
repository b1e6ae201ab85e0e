package core

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// PairID returns a stable identity hash for an unordered body/shape pair.
// The operands are order-normalized first so (a,b) and (b,a) collapse to
// the same manifold identity
func PairID(a, b uint64) uint64 {
	if a > b {
		a, b = b, a
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], a)
	binary.LittleEndian.PutUint64(buf[8:], b)
	return xxh3.Hash(buf[:])
}

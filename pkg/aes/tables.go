package aes

import (
	"crypto/subtle"
	"encoding/binary"
	"math/bits"
)

// packedTable is a 256-entry byte table stored as 32 little-endian words,
// so that a lookup can touch every entry with 32 loads instead of 256.
type packedTable [32]uint64

//nolint:gochecknoglobals
var (
	sbox    packedTable
	invSbox packedTable
)

// rcon holds the round constants x^(i-1) in GF(2^8), indexed from 1.
//
//nolint:gochecknoglobals
var rcon = [...]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

func init() {
	var fwd, inv [256]byte

	generateSbox(&fwd)

	for i, v := range fwd {
		inv[v] = byte(i)
	}

	sbox = pack(&fwd)
	invSbox = pack(&inv)
}

// generateSbox fills table with the Rijndael S-box by walking the
// multiplicative group with generator 3 and applying the affine map to the
// inverse of every element. It runs once at init over public values only.
func generateSbox(table *[256]byte) {
	var p, q byte = 1, 1

	for {
		// p *= 3
		p = mul3(p)

		// q /= 3
		q ^= q << 1
		q ^= q << 2
		q ^= q << 4
		q ^= 0x09 & -(q >> 7)

		x := q ^ bits.RotateLeft8(q, 1) ^ bits.RotateLeft8(q, 2) ^
			bits.RotateLeft8(q, 3) ^ bits.RotateLeft8(q, 4)
		table[p] = x ^ 0x63

		if p == 1 {
			break
		}
	}

	table[0] = 0x63
}

func pack(table *[256]byte) packedTable {
	var out packedTable

	for i := range out {
		out[i] = binary.LittleEndian.Uint64(table[i*8:])
	}

	return out
}

// lookup reads table[x] without a memory access pattern that depends on x:
// every word is loaded and all but the matching one are masked away.
func lookup(table *packedTable, x byte) byte {
	hi := x >> 3

	var word uint64

	for i := range table {
		mask := uint64(subtle.ConstantTimeByteEq(byte(i), hi))
		word |= table[i] & -mask
	}

	return byte(word >> ((x & 7) * 8))
}

// xtime multiplies by x (i.e. 2) in GF(2^8) modulo x^8+x^4+x^3+x+1.
func xtime(b byte) byte {
	return b<<1 ^ 0x1b&-(b>>7)
}

func mul3(b byte) byte {
	return xtime(b) ^ b
}

// gmul multiplies a by b in GF(2^8). The loop count is fixed and every step
// is masked, so the timing does not depend on either operand.
func gmul(a, b byte) byte {
	var p byte

	for range 8 {
		p ^= a & -(b & 1)
		a = xtime(a)
		b >>= 1
	}

	return p
}

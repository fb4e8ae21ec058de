package aes

import "encoding/binary"

// KeySchedule is the expanded key material derived once from a cipher key:
// rounds+1 round keys, each one block wide. It is immutable after ExpandKey.
type KeySchedule struct {
	size KeySize
	keys [][BlockSize]byte
}

// ExpandKey derives the round keys for key using the FIPS-197 recurrence.
// It fails with InvalidKeyLength unless key is 16, 24 or 32 bytes long.
func ExpandKey(key []byte) (*KeySchedule, error) {
	size, err := KeySizeFor(len(key))
	if err != nil {
		return nil, err
	}

	nk := len(key) / wordSize
	rounds := size.Rounds()
	total := blockWords * (rounds + 1)

	words := make([]uint32, total)

	for i := range nk {
		words[i] = binary.BigEndian.Uint32(key[i*wordSize:])
	}

	for i := nk; i < total; i++ {
		temp := words[i-1]

		switch {
		case i%nk == 0:
			temp = subWord(rotWord(temp)) ^ uint32(rcon[i/nk])<<24
		case nk > 6 && i%nk == 4:
			temp = subWord(temp)
		}

		words[i] = words[i-nk] ^ temp
	}

	schedule := &KeySchedule{
		size: size,
		keys: make([][BlockSize]byte, rounds+1),
	}

	for r := range schedule.keys {
		for c := range blockWords {
			binary.BigEndian.PutUint32(schedule.keys[r][c*wordSize:], words[r*blockWords+c])
		}
	}

	clear(words)

	return schedule, nil
}

// Rounds returns the number of cipher rounds the schedule was built for.
func (s *KeySchedule) Rounds() int {
	return len(s.keys) - 1
}

// KeySize returns the size of the key the schedule was derived from.
func (s *KeySchedule) KeySize() KeySize {
	return s.size
}

// RoundKey returns a copy of round key i, for 0 <= i <= Rounds().
func (s *KeySchedule) RoundKey(i int) [BlockSize]byte {
	return s.keys[i]
}

func rotWord(w uint32) uint32 {
	return w<<8 | w>>24
}

func subWord(w uint32) uint32 {
	return uint32(lookup(&sbox, byte(w>>24)))<<24 |
		uint32(lookup(&sbox, byte(w>>16)))<<16 |
		uint32(lookup(&sbox, byte(w>>8)))<<8 |
		uint32(lookup(&sbox, byte(w)))
}

package aes

// The state is kept in FIPS-197 input order: byte r+4c holds row r of column c.

func encryptBlock(s *KeySchedule, state *[BlockSize]byte) {
	rounds := s.Rounds()

	addRoundKey(state, &s.keys[0])

	for r := 1; r < rounds; r++ {
		subBytes(state, &sbox)
		shiftRows(state)
		mixColumns(state)
		addRoundKey(state, &s.keys[r])
	}

	subBytes(state, &sbox)
	shiftRows(state)
	addRoundKey(state, &s.keys[rounds])
}

func decryptBlock(s *KeySchedule, state *[BlockSize]byte) {
	rounds := s.Rounds()

	addRoundKey(state, &s.keys[rounds])

	for r := rounds - 1; r > 0; r-- {
		invShiftRows(state)
		subBytes(state, &invSbox)
		addRoundKey(state, &s.keys[r])
		invMixColumns(state)
	}

	invShiftRows(state)
	subBytes(state, &invSbox)
	addRoundKey(state, &s.keys[0])
}

func addRoundKey(state, key *[BlockSize]byte) {
	for i := range state {
		state[i] ^= key[i]
	}
}

func subBytes(state *[BlockSize]byte, table *packedTable) {
	for i := range state {
		state[i] = lookup(table, state[i])
	}
}

// shiftRows rotates row r left by r columns.
func shiftRows(state *[BlockSize]byte) {
	s := *state

	for c := range blockWords {
		for r := 1; r < blockWords; r++ {
			state[r+4*c] = s[r+4*((c+r)%blockWords)]
		}
	}
}

// invShiftRows rotates row r right by r columns.
func invShiftRows(state *[BlockSize]byte) {
	s := *state

	for c := range blockWords {
		for r := 1; r < blockWords; r++ {
			state[r+4*((c+r)%blockWords)] = s[r+4*c]
		}
	}
}

func mixColumns(state *[BlockSize]byte) {
	for c := 0; c < BlockSize; c += blockWords {
		a0, a1, a2, a3 := state[c], state[c+1], state[c+2], state[c+3]

		state[c] = xtime(a0) ^ mul3(a1) ^ a2 ^ a3
		state[c+1] = a0 ^ xtime(a1) ^ mul3(a2) ^ a3
		state[c+2] = a0 ^ a1 ^ xtime(a2) ^ mul3(a3)
		state[c+3] = mul3(a0) ^ a1 ^ a2 ^ xtime(a3)
	}
}

func invMixColumns(state *[BlockSize]byte) {
	for c := 0; c < BlockSize; c += blockWords {
		a0, a1, a2, a3 := state[c], state[c+1], state[c+2], state[c+3]

		state[c] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		state[c+1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		state[c+2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		state[c+3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

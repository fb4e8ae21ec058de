package mode

// CTRMode is counter mode. Encryption and decryption apply the same
// keystream; only encryption claims the counter block in the registry.
type CTRMode struct {
	base

	registry *Registry
	keyID    KeyID
}

// Kind returns CTR.
func (*CTRMode) Kind() Kind { return CTR }

// IVSize returns the block size: the IV is the initial counter block.
func (m *CTRMode) IVSize() int { return m.blockSize() }

// Encrypt XORs src with the keystream starting at counter block iv.
func (m *CTRMode) Encrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, m.IVSize()); err != nil {
		return nil, err
	}

	if m.registry != nil {
		if err := m.registry.Claim(m.keyID, iv); err != nil {
			return nil, err
		}
	}

	return m.xor(iv, src), nil
}

// Decrypt XORs src with the keystream starting at counter block iv.
func (m *CTRMode) Decrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, m.IVSize()); err != nil {
		return nil, err
	}

	return m.xor(iv, src), nil
}

func (m *CTRMode) xor(iv, src []byte) []byte {
	out := make([]byte, len(src))
	NewCTR(m.block, iv).XORKeyStream(out, src)

	return out
}

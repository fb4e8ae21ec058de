package mode

// ECBMode encrypts each padded block independently.
type ECBMode struct {
	base
}

// Kind returns ECB.
func (*ECBMode) Kind() Kind { return ECB }

// IVSize returns zero: ECB takes no IV.
func (*ECBMode) IVSize() int { return 0 }

// Encrypt pads src and encrypts it block by block. iv must be empty.
func (m *ECBMode) Encrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, 0); err != nil {
		return nil, err
	}

	out, err := m.pad(src)
	if err != nil {
		return nil, err
	}

	bs := m.blockSize()
	for off := 0; off < len(out); off += bs {
		m.block.Encrypt(out[off:off+bs], out[off:off+bs])
	}

	return out, nil
}

// Decrypt decrypts src block by block and strips the padding. iv must be empty.
func (m *ECBMode) Decrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, 0); err != nil {
		return nil, err
	}

	if err := m.checkCiphertext(src); err != nil {
		return nil, err
	}

	bs := m.blockSize()
	out := make([]byte, len(src))

	for off := 0; off < len(src); off += bs {
		m.block.Decrypt(out[off:off+bs], src[off:off+bs])
	}

	return m.unpad(out)
}

package mode

// CBCMode is cipher block chaining with padding.
type CBCMode struct {
	base
}

// Kind returns CBC.
func (*CBCMode) Kind() Kind { return CBC }

// IVSize returns the block size.
func (m *CBCMode) IVSize() int { return m.blockSize() }

// Encrypt pads src and chains it from iv.
func (m *CBCMode) Encrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, m.IVSize()); err != nil {
		return nil, err
	}

	out, err := m.pad(src)
	if err != nil {
		return nil, err
	}

	NewCBCEncrypter(m.block, iv).CryptBlocks(out, out)

	return out, nil
}

// Decrypt reverses Encrypt. A malformed trailer yields InvalidPadding.
func (m *CBCMode) Decrypt(iv, src []byte) ([]byte, error) {
	if err := checkIV(iv, m.IVSize()); err != nil {
		return nil, err
	}

	if err := m.checkCiphertext(src); err != nil {
		return nil, err
	}

	out := make([]byte, len(src))
	NewCBCDecrypter(m.block, iv).CryptBlocks(out, src)

	return m.unpad(out)
}

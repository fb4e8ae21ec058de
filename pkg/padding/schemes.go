package padding

import (
	"crypto/subtle"

	"github.com/idelchi/aesgo/pkg/cipherr"
)

// NoPadding is the identity padder.
type NoPadding struct{}

// Mode returns None.
func (NoPadding) Mode() Mode { return None }

// Pad returns a copy of data.
func (NoPadding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	return grow(data, 0), nil
}

// Unpad returns data unchanged.
func (NoPadding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	return data, nil
}

// PKCS7Padding appends N bytes of value N.
type PKCS7Padding struct{}

// Mode returns PKCS7.
func (PKCS7Padding) Mode() Mode { return PKCS7 }

// Pad appends blockSize - len(data)%blockSize bytes, a full block when data is aligned.
func (PKCS7Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	n := padCount(len(data), blockSize)
	out := grow(data, n)

	for range n {
		out = append(out, byte(n))
	}

	return out, nil
}

// Unpad strips a PKCS#7 trailer. The comparison covers the final block
// without early exit, so its timing does not reveal where a mismatch is.
func (PKCS7Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := trailerCount(data, blockSize)
	if err != nil {
		return nil, err
	}

	window := min(blockSize, len(data))
	bad := 0

	for i := 1; i <= window; i++ {
		inPad := subtle.ConstantTimeLessOrEq(i, n)
		differs := 1 - subtle.ConstantTimeByteEq(data[len(data)-i], byte(n))
		bad |= inPad & differs
	}

	if bad != 0 {
		return nil, cipherr.Newf(cipherr.InvalidPadding, "padding bytes do not all equal %d", n)
	}

	return data[:len(data)-n], nil
}

// ANSIX923Padding appends N-1 zero bytes followed by N.
type ANSIX923Padding struct{}

// Mode returns ANSIX923.
func (ANSIX923Padding) Mode() Mode { return ANSIX923 }

// Pad appends the ANSI X9.23 trailer.
func (ANSIX923Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	n := padCount(len(data), blockSize)
	out := grow(data, n)
	out = append(out, make([]byte, n-1)...)

	return append(out, byte(n)), nil
}

// Unpad strips an ANSI X9.23 trailer, requiring the filler bytes to be zero.
func (ANSIX923Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := trailerCount(data, blockSize)
	if err != nil {
		return nil, err
	}

	var acc byte

	for _, b := range data[len(data)-n : len(data)-1] {
		acc |= b
	}

	if acc != 0 {
		return nil, cipherr.Newf(cipherr.InvalidPadding, "non-zero filler in ANSI X9.23 padding")
	}

	return data[:len(data)-n], nil
}

// ISO7816Padding appends 0x80 then zero bytes up to the block boundary.
type ISO7816Padding struct{}

// Mode returns ISO7816.
func (ISO7816Padding) Mode() Mode { return ISO7816 }

// Pad appends the ISO/IEC 7816-4 trailer.
func (ISO7816Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	n := padCount(len(data), blockSize)
	out := grow(data, n)
	out = append(out, 0x80)

	return append(out, make([]byte, n-1)...), nil
}

// Unpad strips trailing zeros and the 0x80 marker, which must lie within the last block.
func (ISO7816Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}

	for i := len(data) - 1; i >= 0 && len(data)-i <= blockSize; i-- {
		switch data[i] {
		case 0x00:
			continue
		case 0x80:
			return data[:i], nil
		}

		break
	}

	return nil, cipherr.Newf(cipherr.InvalidPadding, "no ISO/IEC 7816-4 marker in final block")
}

// trailerCount reads the count byte shared by PKCS#7 and ANSI X9.23 and
// checks it against the block size and the message length.
func trailerCount(data []byte, blockSize int) (int, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return 0, err
	}

	if len(data) == 0 {
		return 0, cipherr.Newf(cipherr.InvalidPadding, "empty input")
	}

	n := int(data[len(data)-1])

	switch {
	case n == 0:
		return 0, cipherr.Newf(cipherr.InvalidPadding, "zero padding count")
	case n > blockSize:
		return 0, cipherr.Newf(cipherr.InvalidPadding, "padding count %d exceeds block size %d", n, blockSize)
	case n > len(data):
		return 0, cipherr.Newf(cipherr.InvalidPadding, "padding count %d exceeds input length %d", n, len(data))
	}

	return n, nil
}

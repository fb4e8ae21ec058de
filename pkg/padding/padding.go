// Package padding implements the block padding schemes used by the ECB and
// CBC modes: PKCS#7, ANSI X9.23, ISO/IEC 7816-4 and a no-op variant.
package padding

import (
	"strings"

	"github.com/idelchi/aesgo/pkg/cipherr"
)

// MaxBlockSize is the largest block size a single trailing count byte can describe.
const MaxBlockSize = 255

// Mode selects a padding scheme.
type Mode uint8

const (
	// None performs no transformation; the caller supplies aligned input for
	// block modes, or any length for stream-like modes.
	None Mode = iota
	// PKCS7 appends N bytes of value N (also known as PKCS#5 for 8-byte blocks).
	PKCS7
	// ANSIX923 appends N-1 zero bytes followed by the count N.
	ANSIX923
	// ISO7816 appends 0x80 followed by zero bytes.
	ISO7816
)

//nolint:gochecknoglobals
var modeNames = map[Mode]string{
	None:     "none",
	PKCS7:    "pkcs7",
	ANSIX923: "ansix923",
	ISO7816:  "iso7816",
}

// Modes lists every padding mode.
//
//nolint:gochecknoglobals
var Modes = []Mode{None, PKCS7, ANSIX923, ISO7816}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}

	return "invalid"
}

// Valid reports whether m is a known padding mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]

	return ok
}

// ParseMode parses a padding mode name. "pkcs5" is accepted as an alias of pkcs7.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pkcs5" {
		return PKCS7, nil
	}

	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}

	return 0, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown padding mode %q", s)
}

// Padder adds and removes padding for a given block size.
type Padder interface {
	// Mode identifies the scheme.
	Mode() Mode
	// Pad returns data followed by its padding. The input slice is not modified.
	Pad(data []byte, blockSize int) ([]byte, error)
	// Unpad validates and strips the padding, returning a subslice of data.
	Unpad(data []byte, blockSize int) ([]byte, error)
}

// For returns the Padder implementing m.
func For(m Mode) (Padder, error) {
	switch m {
	case None:
		return NoPadding{}, nil
	case PKCS7:
		return PKCS7Padding{}, nil
	case ANSIX923:
		return ANSIX923Padding{}, nil
	case ISO7816:
		return ISO7816Padding{}, nil
	default:
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown padding mode %d", uint8(m))
	}
}

func checkBlockSize(blockSize int) error {
	if blockSize < 1 || blockSize > MaxBlockSize {
		return cipherr.Newf(cipherr.UnsupportedConfiguration, "block size %d outside [1, %d]", blockSize, MaxBlockSize)
	}

	return nil
}

// padCount is the number of bytes appended to a message of length n.
// It is always in [1, blockSize].
func padCount(n, blockSize int) int {
	return blockSize - n%blockSize
}

// grow copies data into a new slice with room for extra trailing bytes.
func grow(data []byte, extra int) []byte {
	out := make([]byte, len(data), len(data)+extra)
	copy(out, data)

	return out
}

// Package aes implements the AES block cipher (FIPS-197) for 128, 192 and
// 256-bit keys.
//
// S-box lookups and GF(2^8) arithmetic are written so that neither timing nor
// memory access pattern depends on key or data bytes. The package does no
// logging and keeps no global mutable state.
package aes

import (
	"fmt"
	"strconv"

	"github.com/idelchi/aesgo/pkg/cipherr"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = 16

	wordSize   = 4
	blockWords = BlockSize / wordSize
)

// KeySize selects one of the three AES variants.
type KeySize uint8

const (
	// KeySize128 selects AES-128 (16-byte key, 10 rounds).
	KeySize128 KeySize = iota + 1
	// KeySize192 selects AES-192 (24-byte key, 12 rounds).
	KeySize192
	// KeySize256 selects AES-256 (32-byte key, 14 rounds).
	KeySize256
)

// KeySizes lists the supported key sizes in ascending order.
//
//nolint:gochecknoglobals
var KeySizes = []KeySize{KeySize128, KeySize192, KeySize256}

// Valid reports whether k is one of the supported key sizes.
func (k KeySize) Valid() bool {
	return k >= KeySize128 && k <= KeySize256
}

// Bytes returns the key length in bytes, or 0 for an invalid size.
func (k KeySize) Bytes() int {
	if !k.Valid() {
		return 0
	}

	return 8 + 8*int(k)
}

// Bits returns the key length in bits.
func (k KeySize) Bits() int {
	return k.Bytes() * 8
}

// Rounds returns the number of rounds: 10, 12 or 14.
// The round count is derived from the key size and nothing else.
func (k KeySize) Rounds() int {
	if !k.Valid() {
		return 0
	}

	return 8 + 2*int(k)
}

func (k KeySize) String() string {
	if !k.Valid() {
		return "AES-invalid(" + strconv.Itoa(int(k)) + ")"
	}

	return "AES-" + strconv.Itoa(k.Bits())
}

// KeySizeFor maps a key length in bytes to its KeySize.
func KeySizeFor(n int) (KeySize, error) {
	switch n {
	case 16:
		return KeySize128, nil
	case 24:
		return KeySize192, nil
	case 32:
		return KeySize256, nil
	default:
		return 0, cipherr.Newf(cipherr.InvalidKeyLength, "key is %d bytes, want 16, 24 or 32", n)
	}
}

// ParseKeySize parses a key size given in bits ("128", "192", "256"),
// optionally prefixed with "aes" or "aes-".
func ParseKeySize(s string) (KeySize, error) {
	for _, k := range KeySizes {
		bits := strconv.Itoa(k.Bits())
		switch s {
		case bits, "aes" + bits, "aes-" + bits, "AES" + bits, "AES-" + bits:
			return k, nil
		}
	}

	return 0, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown key size %q", s)
}

// Cipher is an AES instance bound to one expanded key.
// It satisfies crypto/cipher.Block and is safe for concurrent use, since
// block operations never modify it.
type Cipher struct {
	schedule *KeySchedule
}

// NewCipher expands key and returns a cipher for it.
// The key slice is not retained.
func NewCipher(key []byte) (*Cipher, error) {
	schedule, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}

	return &Cipher{schedule: schedule}, nil
}

// BlockSize returns the AES block size, 16.
func (c *Cipher) BlockSize() int {
	return BlockSize
}

// KeySize reports the variant in use.
func (c *Cipher) KeySize() KeySize {
	return c.schedule.size
}

// Rounds returns the number of rounds the cipher applies.
func (c *Cipher) Rounds() int {
	return c.schedule.Rounds()
}

// Encrypt encrypts the first block of src into dst. Dst and src may overlap entirely.
func (c *Cipher) Encrypt(dst, src []byte) {
	checkBlocks(dst, src)

	var state [BlockSize]byte

	copy(state[:], src)
	encryptBlock(c.schedule, &state)
	copy(dst, state[:])
}

// Decrypt decrypts the first block of src into dst. Dst and src may overlap entirely.
func (c *Cipher) Decrypt(dst, src []byte) {
	checkBlocks(dst, src)

	var state [BlockSize]byte

	copy(state[:], src)
	decryptBlock(c.schedule, &state)
	copy(dst, state[:])
}

// EncryptBlock returns the encryption of a single block.
func (c *Cipher) EncryptBlock(block [BlockSize]byte) [BlockSize]byte {
	encryptBlock(c.schedule, &block)

	return block
}

// DecryptBlock returns the decryption of a single block.
func (c *Cipher) DecryptBlock(block [BlockSize]byte) [BlockSize]byte {
	decryptBlock(c.schedule, &block)

	return block
}

// checkBlocks enforces the crypto/cipher.Block contract, which panics on short buffers.
func checkBlocks(dst, src []byte) {
	if len(src) < BlockSize {
		panic(fmt.Sprintf("aes: input not full block (%d bytes)", len(src)))
	}

	if len(dst) < BlockSize {
		panic(fmt.Sprintf("aes: output not full block (%d bytes)", len(dst)))
	}
}

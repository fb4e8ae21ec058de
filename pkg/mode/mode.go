// Package mode implements the ECB, CBC and CTR modes of operation over any
// crypto/cipher.Block, together with streaming variants and the CTR
// nonce-reuse registry.
package mode

import (
	"crypto/cipher"
	"strings"

	"github.com/idelchi/aesgo/pkg/cipherr"
	"github.com/idelchi/aesgo/pkg/padding"
)

// Kind selects a mode of operation.
type Kind uint8

const (
	// ECB encrypts each block independently. It leaks plaintext structure
	// and exists for interoperability and known-answer testing only.
	ECB Kind = iota + 1
	// CBC chains each plaintext block with the previous ciphertext block.
	CBC
	// CTR turns the block cipher into a stream cipher over a counter.
	CTR
)

// Kinds lists every supported mode.
//
//nolint:gochecknoglobals
var Kinds = []Kind{ECB, CBC, CTR}

//nolint:gochecknoglobals
var kindNames = map[Kind]string{
	ECB: "ecb",
	CBC: "cbc",
	CTR: "ctr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "invalid"
}

// Valid reports whether k is a known mode.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]

	return ok
}

// Padded reports whether the mode pads its input to the block size.
func (k Kind) Padded() bool {
	return k == ECB || k == CBC
}

// ParseKind parses a mode name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}

	return 0, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown chaining mode %q", s)
}

// Mode encrypts and decrypts whole messages.
// Implementations hold no per-message state and are safe for concurrent use.
type Mode interface {
	// Kind identifies the mode.
	Kind() Kind
	// IVSize is the required IV length, zero for ECB.
	IVSize() int
	// Encrypt returns the ciphertext of src under iv. src is not modified.
	Encrypt(iv, src []byte) ([]byte, error)
	// Decrypt returns the plaintext of src under iv. src is not modified.
	Decrypt(iv, src []byte) ([]byte, error)
}

type options struct {
	registry *Registry
	keyID    KeyID
}

// Option configures a Mode.
type Option func(*options)

// WithRegistry makes CTR encryption claim each counter block under keyID in
// registry, failing with NonceReuse on a repeat. Other modes ignore it.
func WithRegistry(registry *Registry, keyID KeyID) Option {
	return func(o *options) {
		o.registry = registry
		o.keyID = keyID
	}
}

// New returns the Mode of the given kind over block. The padder applies to
// ECB and CBC; CTR never pads.
func New(kind Kind, block cipher.Block, padder padding.Padder, opts ...Option) (Mode, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if kind.Padded() && padder == nil {
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "mode %v requires a padder", kind)
	}

	b := base{block: block, padder: padder}

	switch kind {
	case ECB:
		return &ECBMode{base: b}, nil
	case CBC:
		return &CBCMode{base: b}, nil
	case CTR:
		b.padder = padding.NoPadding{}

		return &CTRMode{base: b, registry: o.registry, keyID: o.keyID}, nil
	default:
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown chaining mode %d", uint8(kind))
	}
}

// base carries what every mode needs.
type base struct {
	block  cipher.Block
	padder padding.Padder
}

func (b base) blockSize() int {
	return b.block.BlockSize()
}

// checkIV requires iv to be exactly size bytes.
func checkIV(iv []byte, size int) error {
	if len(iv) != size {
		return cipherr.Newf(cipherr.InvalidBlockAlignment, "IV length %d, want %d", len(iv), size)
	}

	return nil
}

// pad applies the padder and checks the result lines up with the block size.
func (b base) pad(src []byte) ([]byte, error) {
	bs := b.blockSize()

	padded, err := b.padder.Pad(src, bs)
	if err != nil {
		return nil, err
	}

	if len(padded) == 0 || len(padded)%bs != 0 {
		return nil, cipherr.Newf(cipherr.InvalidBlockAlignment,
			"plaintext length %d is not a positive multiple of %d with padding %v", len(src), bs, b.padder.Mode())
	}

	return padded, nil
}

// checkCiphertext requires a positive multiple of the block size.
func (b base) checkCiphertext(src []byte) error {
	bs := b.blockSize()
	if len(src) == 0 || len(src)%bs != 0 {
		return cipherr.Newf(cipherr.InvalidBlockAlignment, "ciphertext length %d is not a positive multiple of %d", len(src), bs)
	}

	return nil
}

// unpad strips padding from out, wiping out on failure.
func (b base) unpad(out []byte) ([]byte, error) {
	plain, err := b.padder.Unpad(out, b.blockSize())
	if err != nil {
		clear(out)

		return nil, err
	}

	return plain, nil
}

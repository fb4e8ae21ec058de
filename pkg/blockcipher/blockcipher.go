// Package blockcipher is the entry point of the library: it validates a
// configuration and returns a Cipher handle that encrypts and decrypts whole
// messages with AES in ECB, CBC or CTR mode.
//
//	c, err := blockcipher.New(key, aes.KeySize256, mode.CBC, padding.PKCS7)
//	ct, iv, err := c.Encrypt(plaintext, nil)
//	pt, err := c.Decrypt(ct, iv)
package blockcipher

import (
	"github.com/idelchi/aesgo/pkg/aes"
	"github.com/idelchi/aesgo/pkg/cipherr"
	"github.com/idelchi/aesgo/pkg/mode"
	"github.com/idelchi/aesgo/pkg/nonce"
	"github.com/idelchi/aesgo/pkg/padding"
)

// Cipher is a configured encryption handle. It holds the expanded key and
// no per-message state, so one handle may serve concurrent calls.
type Cipher struct {
	size    aes.KeySize
	chain   mode.Kind
	padding padding.Mode
	mode    mode.Mode
	nonces  *nonce.Generator
}

type options struct {
	nonces   *nonce.Generator
	registry *mode.Registry
	detect   bool
}

// Option configures New.
type Option func(*options)

// WithNonceGenerator draws generated IVs from g instead of the default generator.
func WithNonceGenerator(g *nonce.Generator) Option {
	return func(o *options) {
		o.nonces = g
	}
}

// WithRegistry records CTR counter blocks in r instead of the process-wide registry.
func WithRegistry(r *mode.Registry) Option {
	return func(o *options) {
		o.registry = r
		o.detect = true
	}
}

// WithoutReuseDetection disables the CTR nonce-reuse check.
// Repeated encryptions under the same caller-supplied IV then succeed and
// produce identical output.
func WithoutReuseDetection() Option {
	return func(o *options) {
		o.detect = false
	}
}

// New validates the configuration and returns a handle.
//
// It fails with UnsupportedConfiguration for an unknown size, mode or padding,
// and with InvalidKeyLength when len(key) does not match size. CTR always
// runs without padding, whatever pad says. The key slice is not retained.
func New(key []byte, size aes.KeySize, chaining mode.Kind, pad padding.Mode, opts ...Option) (*Cipher, error) {
	o := options{detect: true}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case !size.Valid():
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown key size %d", uint8(size))
	case !chaining.Valid():
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown chaining mode %d", uint8(chaining))
	case !pad.Valid():
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "unknown padding mode %d", uint8(pad))
	case len(key) != size.Bytes():
		return nil, cipherr.Newf(cipherr.InvalidKeyLength, "%v requires a %d-byte key, got %d", size, size.Bytes(), len(key))
	}

	if !chaining.Padded() {
		pad = padding.None
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padder, err := padding.For(pad)
	if err != nil {
		return nil, err
	}

	var modeOpts []mode.Option

	if chaining == mode.CTR && o.detect {
		registry := o.registry
		if registry == nil {
			registry, err = mode.DefaultRegistry()
			if err != nil {
				return nil, err
			}
		}

		modeOpts = append(modeOpts, mode.WithRegistry(registry, registry.KeyID(key)))
	}

	m, err := mode.New(chaining, block, padder, modeOpts...)
	if err != nil {
		return nil, err
	}

	nonces := o.nonces
	if nonces == nil {
		nonces = nonce.Default()
	}

	return &Cipher{
		size:    size,
		chain:   chaining,
		padding: pad,
		mode:    m,
		nonces:  nonces,
	}, nil
}

// KeySize returns the configured key size.
func (c *Cipher) KeySize() aes.KeySize { return c.size }

// Mode returns the configured chaining mode.
func (c *Cipher) Mode() mode.Kind { return c.chain }

// Padding returns the effective padding mode, None for CTR.
func (c *Cipher) Padding() padding.Mode { return c.padding }

// IVSize returns the IV length the handle expects, zero for ECB.
func (c *Cipher) IVSize() int { return c.mode.IVSize() }

// Encrypt encrypts plaintext and returns the ciphertext together with the IV
// it used. A nil iv makes the handle generate one: 16 random bytes for CBC,
// a counter block with a zero counter for CTR. ECB takes no IV.
func (c *Cipher) Encrypt(plaintext, iv []byte) (ciphertext, usedIV []byte, err error) {
	if iv == nil && c.mode.IVSize() > 0 {
		if iv, err = c.freshIV(); err != nil {
			return nil, nil, err
		}
	}

	ciphertext, err = c.mode.Encrypt(iv, plaintext)
	if err != nil {
		return nil, nil, err
	}

	return ciphertext, iv, nil
}

// Decrypt reverses Encrypt for the IV it returned.
func (c *Cipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	return c.mode.Decrypt(iv, ciphertext)
}

func (c *Cipher) freshIV() ([]byte, error) {
	if c.chain == mode.CTR {
		return c.nonces.CounterBlock()
	}

	return c.nonces.Generate(c.mode.IVSize())
}

// GenerateNonce draws size bytes from the default nonce generator.
func GenerateNonce(size int) ([]byte, error) {
	return nonce.Generate(size)
}

// KeySizeFor returns the key size matching a key of n bytes.
func KeySizeFor(n int) (aes.KeySize, error) {
	return aes.KeySizeFor(n)
}

// ParseKeySize parses "128", "aes-192", "AES256" and similar.
func ParseKeySize(s string) (aes.KeySize, error) {
	return aes.ParseKeySize(s)
}

// ParseChainingMode parses "ecb", "cbc" or "ctr".
func ParseChainingMode(s string) (mode.Kind, error) {
	return mode.ParseKind(s)
}

// ParsePaddingMode parses "none", "pkcs7", "ansix923" or "iso7816".
func ParsePaddingMode(s string) (padding.Mode, error) {
	return padding.ParseMode(s)
}

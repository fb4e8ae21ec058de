package nonce

import (
	"fmt"
	"sync"

	"github.com/idelchi/aesgo/pkg/aes"
)

const (
	// drbgKeySize is the AES-256 key length of the generator state.
	drbgKeySize = 32
	// drbgSeedSize is the seed length: one key plus one counter block.
	drbgSeedSize = drbgKeySize + aes.BlockSize
	// ReseedInterval is the number of output blocks after which a DRBG
	// pulls fresh seed material.
	ReseedInterval = 1 << 16
)

// DRBG is an AES-256 counter-mode generator. After every request the state
// is replaced with fresh keystream, so earlier outputs cannot be recovered
// from a later state.
type DRBG struct {
	name   string
	secure bool
	seed   SeedFunc

	mu      sync.Mutex
	block   *aes.Cipher
	counter [aes.BlockSize]byte
	blocks  uint64
}

// NewDRBG returns a generator seeded lazily from seed.
// secure marks whether the seed is hardware-backed.
func NewDRBG(name string, secure bool, seed SeedFunc) *DRBG {
	return &DRBG{
		name:   name,
		secure: secure,
		seed:   seed,
	}
}

// Name identifies the generator.
func (d *DRBG) Name() string { return d.name }

// Secure reports whether the generator is seeded from hardware.
func (d *DRBG) Secure() bool { return d.secure }

// Read fills p with generator output.
func (d *DRBG) Read(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.block == nil || d.blocks >= ReseedInterval {
		if err := d.reseed(); err != nil {
			return err
		}
	}

	d.keystream(p)

	var next [drbgSeedSize]byte
	defer clear(next[:])

	d.keystream(next[:])

	return d.rekey(next[:])
}

// reseed mixes fresh seed material into the state.
func (d *DRBG) reseed() error {
	var seed [drbgSeedSize]byte
	defer clear(seed[:])

	if err := d.seed(seed[:]); err != nil {
		return fmt.Errorf("seeding %s: %w", d.name, err)
	}

	if d.block != nil {
		var current [drbgSeedSize]byte

		d.keystream(current[:])

		for i := range seed {
			seed[i] ^= current[i]
		}

		clear(current[:])
	}

	if err := d.rekey(seed[:]); err != nil {
		return err
	}

	d.blocks = 0

	log.Tracef("Reseeded %s", d.name)

	return nil
}

func (d *DRBG) rekey(material []byte) error {
	block, err := aes.NewCipher(material[:drbgKeySize])
	if err != nil {
		return err
	}

	d.block = block
	copy(d.counter[:], material[drbgKeySize:])

	return nil
}

func (d *DRBG) keystream(p []byte) {
	for off := 0; off < len(p); off += aes.BlockSize {
		ks := d.block.EncryptBlock(d.counter)
		incrementCounter(&d.counter)
		d.blocks++

		copy(p[off:], ks[:])
		clear(ks[:])
	}
}

// incrementCounter adds one to the big-endian counter without branching on
// its value.
func incrementCounter(ctr *[aes.BlockSize]byte) {
	carry := uint16(1)

	for i := len(ctr) - 1; i >= 0; i-- {
		sum := uint16(ctr[i]) + carry
		ctr[i] = byte(sum)
		carry = sum >> 8
	}
}

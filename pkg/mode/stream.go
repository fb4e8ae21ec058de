package mode

import (
	"crypto/cipher"
	"crypto/subtle"
)

type cbc struct {
	b   cipher.Block
	iv  []byte
	tmp []byte
}

func newCBC(b cipher.Block, iv []byte) *cbc {
	if len(iv) != b.BlockSize() {
		panic("mode: IV length must equal block size")
	}

	return &cbc{
		b:   b,
		iv:  append([]byte(nil), iv...),
		tmp: make([]byte, b.BlockSize()),
	}
}

func (x *cbc) BlockSize() int { return x.b.BlockSize() }

func (x *cbc) check(dst, src []byte) {
	if len(src)%x.BlockSize() != 0 {
		panic("mode: input not full blocks")
	}

	if len(dst) < len(src) {
		panic("mode: output smaller than input")
	}
}

type cbcEncrypter cbc

// NewCBCEncrypter returns a BlockMode which encrypts in cipher block chaining
// mode. The chaining value carries over between CryptBlocks calls.
func NewCBCEncrypter(b cipher.Block, iv []byte) cipher.BlockMode {
	return (*cbcEncrypter)(newCBC(b, iv))
}

func (x *cbcEncrypter) BlockSize() int { return x.b.BlockSize() }

func (x *cbcEncrypter) CryptBlocks(dst, src []byte) {
	(*cbc)(x).check(dst, src)

	bs := x.BlockSize()

	for off := 0; off < len(src); off += bs {
		subtle.XORBytes(x.iv, x.iv, src[off:off+bs])
		x.b.Encrypt(x.iv, x.iv)
		copy(dst[off:off+bs], x.iv)
	}
}

type cbcDecrypter cbc

// NewCBCDecrypter returns a BlockMode which decrypts in cipher block chaining
// mode. dst and src may be the same slice.
func NewCBCDecrypter(b cipher.Block, iv []byte) cipher.BlockMode {
	return (*cbcDecrypter)(newCBC(b, iv))
}

func (x *cbcDecrypter) BlockSize() int { return x.b.BlockSize() }

func (x *cbcDecrypter) CryptBlocks(dst, src []byte) {
	(*cbc)(x).check(dst, src)

	bs := x.BlockSize()

	for off := 0; off < len(src); off += bs {
		copy(x.tmp, src[off:off+bs])
		x.b.Decrypt(dst[off:off+bs], src[off:off+bs])
		subtle.XORBytes(dst[off:off+bs], dst[off:off+bs], x.iv)
		x.iv, x.tmp = x.tmp, x.iv
	}
}

type ctr struct {
	b       cipher.Block
	counter []byte
	ks      []byte
	used    int
}

// NewCTR returns a Stream which XORs with the keystream E(iv), E(iv+1), ...
// The counter is the whole block, incremented big-endian modulo 2^(8*blocksize).
func NewCTR(b cipher.Block, iv []byte) cipher.Stream {
	if len(iv) != b.BlockSize() {
		panic("mode: IV length must equal block size")
	}

	return &ctr{
		b:       b,
		counter: append([]byte(nil), iv...),
		ks:      make([]byte, b.BlockSize()),
		used:    b.BlockSize(),
	}
}

func (x *ctr) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("mode: output smaller than input")
	}

	for len(src) > 0 {
		if x.used == len(x.ks) {
			x.b.Encrypt(x.ks, x.counter)
			IncrementCounter(x.counter)
			x.used = 0
		}

		n := subtle.XORBytes(dst, src, x.ks[x.used:])
		x.used += n
		dst = dst[n:]
		src = src[n:]
	}
}

// IncrementCounter adds one to the big-endian counter in place, wrapping to
// zero after all bytes are 0xff. Its timing does not depend on the value.
func IncrementCounter(counter []byte) {
	carry := uint16(1)

	for i := len(counter) - 1; i >= 0; i-- {
		sum := uint16(counter[i]) + carry
		counter[i] = byte(sum)
		carry = sum >> 8
	}
}

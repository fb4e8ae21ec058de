package mode_test

import (
	"bytes"
	stdaes "crypto/aes"
	"crypto/cipher"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"github.com/tink-crypto/tink-go/v2/aead/subtle"
	"pgregory.net/rapid"

	"github.com/idelchi/aesgo/internal/vectors"
	"github.com/idelchi/aesgo/pkg/aes"
	"github.com/idelchi/aesgo/pkg/cipherr"
	"github.com/idelchi/aesgo/pkg/mode"
	"github.com/idelchi/aesgo/pkg/padding"
)

// tester is satisfied by both *testing.T and *rapid.T.
type tester interface {
	require.TestingT
	Helper()
}

func newMode(t tester, kind mode.Kind, key []byte, pad padding.Mode, opts ...mode.Option) mode.Mode {
	t.Helper()

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	padder, err := padding.For(pad)
	require.NoError(t, err)

	m, err := mode.New(kind, block, padder, opts...)
	require.NoError(t, err)

	return m
}

func TestKnownAnswerVectors(t *testing.T) {
	t.Parallel()

	all, err := vectors.Load()
	require.NoError(t, err)

	for _, kind := range mode.Kinds {
		cases := vectors.Filter(all, kind.String())
		require.NotEmpty(t, cases, "no vectors for %v", kind)

		for _, v := range cases {
			t.Run(v.Name, func(t *testing.T) {
				t.Parallel()

				d, err := v.Decode()
				require.NoError(t, err)

				m := newMode(t, kind, d.Key, padding.None)

				ct, err := m.Encrypt(d.IV, d.Plaintext)
				require.NoError(t, err)
				require.Equal(t, d.Ciphertext, ct)

				pt, err := m.Decrypt(d.IV, d.Ciphertext)
				require.NoError(t, err)
				require.Equal(t, d.Plaintext, pt)
			})
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range mode.Kinds {
		got, err := mode.ParseKind(" " + k.String() + " ")
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	got, err := mode.ParseKind("CBC")
	require.NoError(t, err)
	require.Equal(t, mode.CBC, got)

	_, err = mode.ParseKind("gcm")
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)

	_, err = mode.New(mode.Kind(9), nil, padding.NoPadding{})
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)
}

func TestCBCBitFlipLocality(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 16)
	plain := bytes.Repeat([]byte("0123456789abcdef"), 4)

	m := newMode(t, mode.CBC, key, padding.None)

	ct, err := m.Encrypt(iv, plain)
	require.NoError(t, err)

	for block := range 3 {
		tampered := bytes.Clone(ct)
		tampered[block*16+5] ^= 0x01

		got, err := m.Decrypt(iv, tampered)
		require.NoError(t, err)

		for i := range 4 {
			same := bytes.Equal(got[i*16:(i+1)*16], plain[i*16:(i+1)*16])

			switch i {
			case block:
				require.False(t, same, "block %d should be garbled", i)
			case block + 1:
				require.False(t, same, "block %d should have a flipped bit", i)

				diff := got[i*16+5] ^ plain[i*16+5]
				require.Equal(t, byte(0x01), diff)
			default:
				require.True(t, same, "block %d should be intact", i)
			}
		}
	}
}

func TestCBCWrongPadding(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x01}, 16)
	iv := make([]byte, 16)

	// A final plaintext byte of zero is never a valid PKCS#7 count.
	raw := newMode(t, mode.CBC, key, padding.None)
	ct, err := raw.Encrypt(iv, append(bytes.Repeat([]byte{0xaa}, 15), 0x00))
	require.NoError(t, err)

	padded := newMode(t, mode.CBC, key, padding.PKCS7)
	got, err := padded.Decrypt(iv, ct)
	require.Nil(t, got)
	require.ErrorIs(t, err, cipherr.InvalidPadding)
}

func TestAlignmentErrors(t *testing.T) {
	t.Parallel()

	key := make([]byte, 16)
	iv := make([]byte, 16)

	cbcNone := newMode(t, mode.CBC, key, padding.None)
	cbcPKCS := newMode(t, mode.CBC, key, padding.PKCS7)
	ecb := newMode(t, mode.ECB, key, padding.PKCS7)
	ctr := newMode(t, mode.CTR, key, padding.None)

	tests := []struct {
		name string
		run  func() ([]byte, error)
	}{
		{"cbc unaligned plaintext", func() ([]byte, error) { return cbcNone.Encrypt(iv, make([]byte, 15)) }},
		{"cbc empty plaintext", func() ([]byte, error) { return cbcNone.Encrypt(iv, nil) }},
		{"cbc unaligned ciphertext", func() ([]byte, error) { return cbcPKCS.Decrypt(iv, make([]byte, 17)) }},
		{"cbc empty ciphertext", func() ([]byte, error) { return cbcPKCS.Decrypt(iv, nil) }},
		{"cbc short iv", func() ([]byte, error) { return cbcPKCS.Encrypt(iv[:15], []byte("x")) }},
		{"ctr long iv", func() ([]byte, error) { return ctr.Decrypt(make([]byte, 17), []byte("x")) }},
		{"ecb with iv", func() ([]byte, error) { return ecb.Encrypt(iv, []byte("x")) }},
		{"ecb unaligned ciphertext", func() ([]byte, error) { return ecb.Decrypt(nil, make([]byte, 20)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := tt.run()
			require.Nil(t, out)
			require.ErrorIs(t, err, cipherr.InvalidBlockAlignment)
		})
	}
}

func TestCTRProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "key")
		iv := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(t, "iv")
		n := rapid.IntRange(0, 100).Draw(t, "n")
		p1 := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "p1")
		p2 := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "p2")

		m := newMode(t, mode.CTR, key, padding.None)

		c1, err := m.Encrypt(iv, p1)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}

		c2, err := m.Encrypt(iv, p2)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}

		if len(c1) != n {
			t.Fatalf("ciphertext length %d, want %d", len(c1), n)
		}

		for i := range n {
			if c1[i]^c2[i] != p1[i]^p2[i] {
				t.Fatalf("keystream differs at byte %d", i)
			}
		}

		again, err := m.Decrypt(iv, c1)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}

		if !bytes.Equal(again, p1) {
			t.Fatalf("round trip mismatch")
		}
	})
}

func TestCTRPartialBlock(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x5a}, 24)
	iv := bytes.Repeat([]byte{0xfe}, 16)
	plain := bytes.Repeat([]byte{0x33}, 37)

	m := newMode(t, mode.CTR, key, padding.None)

	full, err := m.Encrypt(iv, plain)
	require.NoError(t, err)

	part, err := m.Encrypt(iv, plain[:21])
	require.NoError(t, err)
	require.Equal(t, full[:21], part)
}

func TestIncrementCounter(t *testing.T) {
	t.Parallel()

	counter := make([]byte, 16)
	for range 65536 {
		mode.IncrementCounter(counter)
	}

	want := make([]byte, 16)
	want[13] = 0x01
	require.Equal(t, want, counter)

	wrap := bytes.Repeat([]byte{0xff}, 16)
	mode.IncrementCounter(wrap)
	require.Equal(t, make([]byte, 16), wrap)

	carry := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff}
	mode.IncrementCounter(carry)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x00}, carry)
}

func TestCTRCounterWrapMatchesStream(t *testing.T) {
	t.Parallel()

	key := make([]byte, 16)
	iv := bytes.Repeat([]byte{0xff}, 16)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	ks := make([]byte, 32)
	mode.NewCTR(block, iv).XORKeyStream(ks, ks)

	first := block.EncryptBlock([16]byte(iv))
	second := block.EncryptBlock([16]byte{})

	require.Equal(t, first[:], ks[:16])
	require.Equal(t, second[:], ks[16:])
}

func TestNonceReuse(t *testing.T) {
	t.Parallel()

	reg, err := mode.NewRegistry(16)
	require.NoError(t, err)

	key := bytes.Repeat([]byte{0x42}, 16)
	other := bytes.Repeat([]byte{0x43}, 16)
	iv := bytes.Repeat([]byte{0x07}, 16)

	m := newMode(t, mode.CTR, key, padding.None, mode.WithRegistry(reg, reg.KeyID(key)))
	n := newMode(t, mode.CTR, other, padding.None, mode.WithRegistry(reg, reg.KeyID(other)))

	ct, err := m.Encrypt(iv, []byte("attack at dawn"))
	require.NoError(t, err)

	for range 3 {
		_, err = m.Decrypt(iv, ct)
		require.NoError(t, err)
	}

	out, err := m.Encrypt(iv, []byte("attack at dusk"))
	require.Nil(t, out)
	require.ErrorIs(t, err, cipherr.NonceReuse)

	_, err = n.Encrypt(iv, []byte("same nonce, other key"))
	require.NoError(t, err)

	require.Equal(t, 2, reg.Len())
}

func TestRegistryKeyID(t *testing.T) {
	t.Parallel()

	a, err := mode.NewRegistry(4)
	require.NoError(t, err)

	b, err := mode.NewRegistry(4)
	require.NoError(t, err)

	key := []byte("0123456789abcdef")

	require.Equal(t, a.KeyID(key), a.KeyID(key))
	require.NotEqual(t, a.KeyID(key), b.KeyID(key))
	require.NotEqual(t, a.KeyID(key), a.KeyID([]byte("0123456789abcdeg")))

	first, err := mode.DefaultRegistry()
	require.NoError(t, err)

	second, err := mode.DefaultRegistry()
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestRegistrySaltFailure(t *testing.T) {
	t.Parallel()

	reg, err := mode.NewRegistryWithSalt(4, iotest.ErrReader(errors.New("no entropy")))
	require.Nil(t, reg)
	require.ErrorIs(t, err, cipherr.EntropyUnavailable)

	reg, err = mode.NewRegistryWithSalt(4, bytes.NewReader(make([]byte, 8)))
	require.Nil(t, reg)
	require.ErrorIs(t, err, cipherr.EntropyUnavailable)
}

func TestMatchesStandardLibrary(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		size := rapid.SampledFrom([]int{16, 24, 32}).Draw(t, "size")
		key := rapid.SliceOfN(rapid.Byte(), size, size).Draw(t, "key")
		iv := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(t, "iv")
		blocks := rapid.IntRange(1, 8).Draw(t, "blocks")
		plain := rapid.SliceOfN(rapid.Byte(), blocks*16, blocks*16).Draw(t, "plain")

		ref, err := stdaes.NewCipher(key)
		if err != nil {
			t.Fatalf("crypto/aes: %v", err)
		}

		block, err := aes.NewCipher(key)
		if err != nil {
			t.Fatalf("NewCipher: %v", err)
		}

		wantCBC := make([]byte, len(plain))
		cipher.NewCBCEncrypter(ref, iv).CryptBlocks(wantCBC, plain)

		gotCBC := make([]byte, len(plain))
		mode.NewCBCEncrypter(block, iv).CryptBlocks(gotCBC, plain)

		if !bytes.Equal(gotCBC, wantCBC) {
			t.Fatalf("CBC mismatch")
		}

		back := make([]byte, len(plain))
		mode.NewCBCDecrypter(block, iv).CryptBlocks(back, gotCBC)

		if !bytes.Equal(back, plain) {
			t.Fatalf("CBC decrypt mismatch")
		}

		tail := rapid.IntRange(0, 15).Draw(t, "tail")
		msg := plain[:len(plain)-tail]

		wantCTR := make([]byte, len(msg))
		cipher.NewCTR(ref, iv).XORKeyStream(wantCTR, msg)

		gotCTR := make([]byte, len(msg))
		mode.NewCTR(block, iv).XORKeyStream(gotCTR, msg)

		if !bytes.Equal(gotCTR, wantCTR) {
			t.Fatalf("CTR mismatch")
		}
	})
}

func TestStreamsAcrossCalls(t *testing.T) {
	t.Parallel()

	block, err := aes.NewCipher(make([]byte, 16))
	require.NoError(t, err)

	iv := bytes.Repeat([]byte{0x01}, 16)
	plain := bytes.Repeat([]byte{0x99}, 64)

	whole := make([]byte, 64)
	mode.NewCBCEncrypter(block, iv).CryptBlocks(whole, plain)

	enc := mode.NewCBCEncrypter(block, iv)
	split := make([]byte, 64)
	enc.CryptBlocks(split[:16], plain[:16])
	enc.CryptBlocks(split[16:], plain[16:])
	require.Equal(t, whole, split)

	inPlace := bytes.Clone(whole)
	mode.NewCBCDecrypter(block, iv).CryptBlocks(inPlace, inPlace)
	require.Equal(t, plain, inPlace)

	stream := mode.NewCTR(block, iv)
	ctrWhole := make([]byte, 50)
	mode.NewCTR(block, iv).XORKeyStream(ctrWhole, plain[:50])

	ctrSplit := make([]byte, 50)
	stream.XORKeyStream(ctrSplit[:7], plain[:7])
	stream.XORKeyStream(ctrSplit[7:30], plain[7:30])
	stream.XORKeyStream(ctrSplit[30:], plain[30:50])
	require.Equal(t, ctrWhole, ctrSplit)

	require.Panics(t, func() { enc.CryptBlocks(make([]byte, 16), make([]byte, 15)) })
	require.Panics(t, func() { mode.NewCTR(block, iv[:8]) })
}

func TestTinkInterop(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x6b}, 32)

	tink, err := subtle.NewAESCTR(key, 16)
	require.NoError(t, err)

	m := newMode(t, mode.CTR, key, padding.None)

	for _, n := range []int{0, 1, 16, 33, 100} {
		plain := bytes.Repeat([]byte{byte(n)}, n)

		sealed, err := tink.Encrypt(plain)
		require.NoError(t, err)

		got, err := m.Decrypt(sealed[:16], sealed[16:])
		require.NoError(t, err)
		require.Equal(t, plain, got)

		iv := bytes.Repeat([]byte{0x0c}, 16)
		ct, err := m.Encrypt(iv, plain)
		require.NoError(t, err)

		opened, err := tink.Decrypt(append(bytes.Clone(iv), ct...))
		require.NoError(t, err)
		require.Equal(t, plain, opened)
	}
}

func TestECBRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		pad := rapid.SampledFrom([]padding.Mode{padding.PKCS7, padding.ANSIX923, padding.ISO7816}).Draw(t, "pad")
		kind := rapid.SampledFrom([]mode.Kind{mode.ECB, mode.CBC}).Draw(t, "kind")
		key := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(t, "key")
		plain := rapid.SliceOfN(rapid.Byte(), 0, 80).Draw(t, "plain")

		m := newMode(t, kind, key, pad)

		var iv []byte
		if kind == mode.CBC {
			iv = make([]byte, 16)
		}

		ct, err := m.Encrypt(iv, plain)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}

		if len(ct)%16 != 0 || len(ct) <= len(plain) {
			t.Fatalf("ciphertext length %d for plaintext %d", len(ct), len(plain))
		}

		got, err := m.Decrypt(iv, ct)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}

		if !bytes.Equal(got, plain) {
			t.Fatalf("round trip mismatch")
		}
	})
}

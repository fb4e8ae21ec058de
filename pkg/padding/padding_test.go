package padding_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/idelchi/aesgo/pkg/cipherr"
	"github.com/idelchi/aesgo/pkg/padding"
)

const blockSize = 16

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		mode := rapid.SampledFrom([]padding.Mode{padding.PKCS7, padding.ANSIX923, padding.ISO7816}).Draw(t, "mode")
		bs := rapid.IntRange(1, padding.MaxBlockSize).Draw(t, "blockSize")
		msg := rapid.SliceOfN(rapid.Byte(), 0, 600).Draw(t, "msg")

		p, err := padding.For(mode)
		if err != nil {
			t.Fatalf("For(%v): %v", mode, err)
		}

		padded, err := p.Pad(msg, bs)
		if err != nil {
			t.Fatalf("Pad: %v", err)
		}

		if len(padded)%bs != 0 || len(padded) <= len(msg) || len(padded)-len(msg) > bs {
			t.Fatalf("padded length %d for message %d and block %d", len(padded), len(msg), bs)
		}

		got, err := p.Unpad(padded, bs)
		if err != nil {
			t.Fatalf("Unpad: %v", err)
		}

		if !bytes.Equal(got, msg) {
			t.Fatalf("round trip mismatch: got %x want %x", got, msg)
		}
	})
}

func TestPKCS7FullBlockWhenAligned(t *testing.T) {
	t.Parallel()

	p := padding.PKCS7Padding{}
	msg := bytes.Repeat([]byte{0xaa}, 2*blockSize)

	padded, err := p.Pad(msg, blockSize)
	require.NoError(t, err)
	require.Len(t, padded, 3*blockSize)
	require.Equal(t, bytes.Repeat([]byte{blockSize}, blockSize), padded[2*blockSize:])

	padded, err = p.Pad(nil, blockSize)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{blockSize}, blockSize), padded)

	// Pad must not write into the caller's backing array.
	backing := make([]byte, 3, 32)
	_, err = p.Pad(backing, blockSize)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 32), backing[:32])
}

func TestPKCS7RejectsTamperedTrailer(t *testing.T) {
	t.Parallel()

	p := padding.PKCS7Padding{}

	// Every message length within a block, every position in its trailer.
	for length := range blockSize {
		msg := bytes.Repeat([]byte{0x6b}, blockSize+length)

		padded, err := p.Pad(msg, blockSize)
		require.NoError(t, err)

		n := int(padded[len(padded)-1])

		for j := 2; j <= n; j++ {
			tampered := bytes.Clone(padded)
			tampered[len(tampered)-j]--

			_, err := p.Unpad(tampered, blockSize)
			require.ErrorIs(t, err, cipherr.InvalidPadding, "length %d offset %d", length, j)
		}
	}
}

func TestPKCS7InvalidCounts(t *testing.T) {
	t.Parallel()

	p := padding.PKCS7Padding{}

	cases := map[string][]byte{
		"empty":              {},
		"zero count":         append(bytes.Repeat([]byte{1}, 15), 0),
		"count above block":  append(bytes.Repeat([]byte{17}, 15), 17),
		"count above length": {3, 3},
		"mixed trailer":      append(bytes.Repeat([]byte{4}, 13), 4, 5, 4),
	}

	for name, data := range cases {
		_, err := p.Unpad(data, blockSize)
		require.ErrorIs(t, err, cipherr.InvalidPadding, name)
		require.Equal(t, cipherr.InvalidPadding, cipherr.KindOf(err), name)
	}
}

func TestANSIX923(t *testing.T) {
	t.Parallel()

	p := padding.ANSIX923Padding{}

	padded, err := p.Pad([]byte{1, 2, 3}, 8)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 5}, padded)

	padded[4] = 9
	_, err = p.Unpad(padded, 8)
	require.ErrorIs(t, err, cipherr.InvalidPadding)
}

func TestISO7816(t *testing.T) {
	t.Parallel()

	p := padding.ISO7816Padding{}

	padded, err := p.Pad([]byte{1, 2, 3}, 8)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0x80, 0, 0, 0, 0}, padded)

	_, err = p.Unpad(make([]byte, 16), 8)
	require.ErrorIs(t, err, cipherr.InvalidPadding)
}

func TestNoPadding(t *testing.T) {
	t.Parallel()

	p, err := padding.For(padding.None)
	require.NoError(t, err)
	require.Equal(t, padding.None, p.Mode())

	msg := []byte("not aligned")

	padded, err := p.Pad(msg, blockSize)
	require.NoError(t, err)
	require.Equal(t, msg, padded)

	got, err := p.Unpad(padded, blockSize)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

func TestInvalidConfiguration(t *testing.T) {
	t.Parallel()

	_, err := padding.For(padding.Mode(42))
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)

	_, err = padding.PKCS7Padding{}.Pad(nil, 0)
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)

	_, err = padding.PKCS7Padding{}.Pad(nil, 256)
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range padding.Modes {
		got, err := padding.ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}

	got, err := padding.ParseMode("PKCS5")
	require.NoError(t, err)
	require.Equal(t, padding.PKCS7, got)

	_, err = padding.ParseMode("zeros")
	require.ErrorIs(t, err, cipherr.UnsupportedConfiguration)
}

package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/idelchi/aesgo/pkg/aes"
	"github.com/idelchi/aesgo/pkg/mode"
	"github.com/idelchi/aesgo/pkg/padding"
)

const (
	envelopeMagic   = "AESG"
	envelopeVersion = byte(1)

	envelopeFlagExec = 0x01
)

// envelopeFixedSize covers magic, version, flags, key size, mode, padding and IV length.
const envelopeFixedSize = len(envelopeMagic) + 6

// ErrProcessing indicates an error during envelope processing.
var ErrProcessing = errors.New("envelope processing error")

// Envelope is the header written in front of every encrypted file.
type Envelope struct {
	KeySize    aes.KeySize
	Mode       mode.Kind
	Padding    padding.Mode
	Executable bool
	IV         []byte
}

// MarshalBinary encodes the header.
func (e Envelope) MarshalBinary() ([]byte, error) {
	if len(e.IV) > 0xff {
		return nil, fmt.Errorf("%w: IV of %d bytes does not fit the header", ErrProcessing, len(e.IV))
	}

	header := make([]byte, envelopeFixedSize, envelopeFixedSize+len(e.IV))
	copy(header, envelopeMagic)

	var flags byte

	if e.Executable {
		flags |= envelopeFlagExec
	}

	n := len(envelopeMagic)
	header[n] = envelopeVersion
	header[n+1] = flags
	header[n+2] = byte(e.KeySize)
	header[n+3] = byte(e.Mode)
	header[n+4] = byte(e.Padding)
	header[n+5] = byte(len(e.IV))

	return append(header, e.IV...), nil
}

// ReadEnvelope reads and validates a header from r.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	fixed := make([]byte, envelopeFixedSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Envelope{}, fmt.Errorf("%w: reading header: %w", ErrProcessing, err)
	}

	if !bytes.Equal(fixed[:len(envelopeMagic)], []byte(envelopeMagic)) {
		return Envelope{}, fmt.Errorf("%w: invalid envelope magic", ErrProcessing)
	}

	n := len(envelopeMagic)

	if version := fixed[n]; version != envelopeVersion {
		return Envelope{}, fmt.Errorf("%w: unsupported envelope version %d", ErrProcessing, version)
	}

	env := Envelope{
		Executable: fixed[n+1]&envelopeFlagExec != 0,
		KeySize:    aes.KeySize(fixed[n+2]),
		Mode:       mode.Kind(fixed[n+3]),
		Padding:    padding.Mode(fixed[n+4]),
	}

	switch {
	case !env.KeySize.Valid():
		return Envelope{}, fmt.Errorf("%w: unsupported key size %d", ErrProcessing, fixed[n+2])
	case !env.Mode.Valid():
		return Envelope{}, fmt.Errorf("%w: unsupported mode %d", ErrProcessing, fixed[n+3])
	case !env.Padding.Valid():
		return Envelope{}, fmt.Errorf("%w: unsupported padding %d", ErrProcessing, fixed[n+4])
	}

	if ivLen := int(fixed[n+5]); ivLen > 0 {
		env.IV = make([]byte, ivLen)
		if _, err := io.ReadFull(r, env.IV); err != nil {
			return Envelope{}, fmt.Errorf("%w: reading IV: %w", ErrProcessing, err)
		}
	}

	return env, nil
}

package nonce

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Source is a provider of raw nonce bytes.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Secure reports whether the source is backed by hardware entropy.
	Secure() bool
	// Read fills p completely or returns an error.
	Read(p []byte) error
}

// SeedFunc fills p with seed material for a DRBG.
type SeedFunc func(p []byte) error

// ErrHardwareExhausted is returned when an entropy instruction did not
// succeed within the configured number of retries.
var ErrHardwareExhausted = errors.New("hardware entropy exhausted")

// hardwareRead fills p with 64-bit words from read, retrying each word.
func hardwareRead(p []byte, retries int, read func() (uint64, bool)) error {
	var word [8]byte

	for off := 0; off < len(p); off += len(word) {
		ok := false

		var v uint64

		for range retries {
			if v, ok = read(); ok {
				break
			}

			runtime.Gosched()
		}

		if !ok {
			clear(word[:])

			return ErrHardwareExhausted
		}

		binary.LittleEndian.PutUint64(word[:], v)
		copy(p[off:], word[:])
	}

	clear(word[:])

	return nil
}

type rdseedSource struct {
	retries int
}

// NewRDSEED returns a source reading RDSEED directly, retrying each word up
// to retries times.
func NewRDSEED(retries int) Source {
	return rdseedSource{retries: retries}
}

func (rdseedSource) Name() string { return "rdseed" }

func (rdseedSource) Secure() bool { return true }

func (s rdseedSource) Read(p []byte) error {
	return hardwareRead(p, s.retries, rdseed64)
}

// RDRANDSeed returns a SeedFunc reading RDRAND words.
func RDRANDSeed(retries int) SeedFunc {
	return func(p []byte) error {
		return hardwareRead(p, retries, rdrand64)
	}
}

// fallbackInfo separates fallback seeds from any other use of the same inputs.
const fallbackInfo = "aesgo nonce fallback seed v1"

//nolint:gochecknoglobals
var fallbackCounter atomic.Uint64

// FallbackSeed derives seed material through HKDF-SHA256 from the operating
// system generator when readable, the wall clock, the process id and a
// process-wide counter. It never fails for lack of hardware.
func FallbackSeed(p []byte) error {
	var ikm bytes.Buffer

	osEntropy := make([]byte, sha256.Size)
	if _, err := io.ReadFull(rand.Reader, osEntropy); err != nil {
		log.Warnf("Operating system entropy unavailable for fallback seed: %v", err)
		clear(osEntropy)
	}

	ikm.Write(osEntropy)
	clear(osEntropy)

	var scratch [8]byte

	for _, v := range []uint64{
		uint64(time.Now().UnixNano()), //nolint:gosec
		uint64(os.Getpid()),           //nolint:gosec
		fallbackCounter.Add(1),
	} {
		binary.BigEndian.PutUint64(scratch[:], v)
		ikm.Write(scratch[:])
	}

	reader := hkdf.New(sha256.New, ikm.Bytes(), nil, []byte(fallbackInfo))
	defer clear(ikm.Bytes())

	if _, err := io.ReadFull(reader, p); err != nil {
		return fmt.Errorf("deriving fallback seed: %w", err)
	}

	return nil
}

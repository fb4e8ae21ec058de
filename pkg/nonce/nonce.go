// Package nonce generates initialization vectors and counter blocks.
//
// Sources are tried in order of preference: RDSEED read directly, an
// AES-256 counter-mode DRBG seeded by RDRAND, and a software DRBG seeded
// through HKDF from the operating system generator and process state.
// The software path is always available and is reported as not secure.
//
// Log output is diagnostic only: failures are always returned as errors,
// and nothing is logged unless the caller installs a logger with UseLogger.
package nonce

import (
	"errors"
	"fmt"
	"sync"

	"github.com/idelchi/aesgo/pkg/aes"
	"github.com/idelchi/aesgo/pkg/cipherr"
)

const (
	// Size is the IV and counter-block length for AES.
	Size = aes.BlockSize
	// CounterSize is the trailing portion of a counter block reserved for
	// the block counter. The leading bytes are random.
	CounterSize = 4
	// MaxSize bounds a single Generate request.
	MaxSize = 4096
	// HardwareRetries is the default per-word retry count for hardware reads
	// and the default number of attempts per source on degenerate output.
	HardwareRetries = 10
	// degenerateMin is the length from which an output of identical bytes
	// is treated as a source malfunction.
	degenerateMin = 8
)

// Generator produces nonces from an ordered list of sources.
// It is safe for concurrent use.
type Generator struct {
	sources  []Source
	attempts int
	warnOnce sync.Once
}

type options struct {
	caps    *Capabilities
	sources []Source
	retries int
}

// Option configures a Generator.
type Option func(*options)

// WithCapabilities overrides the detected hardware capabilities.
// Passing the zero value forces the software fallback.
func WithCapabilities(caps Capabilities) Option {
	return func(o *options) {
		o.caps = &caps
	}
}

// WithSources replaces the source chain entirely.
func WithSources(sources ...Source) Option {
	return func(o *options) {
		o.sources = sources
	}
}

// WithRetries sets the hardware retry count and the attempts per source.
func WithRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.retries = n
		}
	}
}

// New builds a Generator. Without options the chain is derived from Detect.
func New(opts ...Option) *Generator {
	o := options{retries: HardwareRetries}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Generator{attempts: o.retries}

	if len(o.sources) > 0 {
		g.sources = o.sources

		return g
	}

	caps := Detect()
	if o.caps != nil {
		caps = *o.caps
	}

	if caps.RDSEED {
		g.sources = append(g.sources, NewRDSEED(o.retries))
	}

	if caps.RDRAND {
		g.sources = append(g.sources, NewDRBG("rdrand-drbg", true, RDRANDSeed(o.retries)))
	}

	g.sources = append(g.sources, NewDRBG("fallback-drbg", false, FallbackSeed))

	log.Debugf("Nonce generator using %q as primary source (%d sources)", g.sources[0].Name(), len(g.sources))

	return g
}

// Source returns the name of the preferred source.
func (g *Generator) Source() string {
	return g.sources[0].Name()
}

// Secure reports whether the preferred source is hardware-backed.
func (g *Generator) Secure() bool {
	return g.sources[0].Secure()
}

// Generate returns size unpredictable bytes.
func (g *Generator) Generate(size int) ([]byte, error) {
	if size < 1 || size > MaxSize {
		return nil, cipherr.Newf(cipherr.UnsupportedConfiguration, "nonce size %d outside [1, %d]", size, MaxSize)
	}

	out := make([]byte, size)

	var errs []error

	for _, src := range g.sources {
		err := g.readFrom(src, out)
		if err == nil {
			if !src.Secure() {
				g.warnOnce.Do(func() {
					log.Warnf("Nonces are drawn from software source %q: no hardware entropy available", src.Name())
				})
			}

			return out, nil
		}

		log.Debugf("Entropy source %q failed: %v", src.Name(), err)

		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}

	clear(out)

	return nil, cipherr.Newf(cipherr.EntropyUnavailable, "all %d sources failed: %v", len(g.sources), errors.Join(errs...))
}

// errDegenerate reports output that repeated a single byte value.
var errDegenerate = errors.New("degenerate output")

func (g *Generator) readFrom(src Source, out []byte) error {
	for range g.attempts {
		if err := src.Read(out); err != nil {
			return err
		}

		if !degenerate(out) {
			return nil
		}

		log.Warnf("Entropy source %q returned degenerate output, retrying", src.Name())
	}

	return errDegenerate
}

// CounterBlock returns a fresh CTR initial counter block: random leading
// bytes followed by CounterSize zero bytes, so a message may run for
// 2^32 blocks before the counter carries into the random part.
func (g *Generator) CounterBlock() ([]byte, error) {
	prefix, err := g.Generate(Size - CounterSize)
	if err != nil {
		return nil, err
	}

	block := make([]byte, Size)
	copy(block, prefix)

	return block, nil
}

// degenerate reports whether p is long enough to judge and holds one byte value.
func degenerate(p []byte) bool {
	if len(p) < degenerateMin {
		return false
	}

	for _, b := range p[1:] {
		if b != p[0] {
			return false
		}
	}

	return true
}

//nolint:gochecknoglobals
var defaultGenerator = sync.OnceValue(func() *Generator {
	return New()
})

// Default returns the process-wide generator built from Detect.
func Default() *Generator {
	return defaultGenerator()
}

// Generate draws size bytes from the default generator.
func Generate(size int) ([]byte, error) {
	return Default().Generate(size)
}

package logic

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/pkg/nonce"
)

// generator returns the software-only generator when requested, otherwise the default.
func generator(cfg *config.Config) *nonce.Generator {
	if cfg.Nonce.Software {
		return nonce.New(nonce.WithCapabilities(nonce.Capabilities{}))
	}

	return nonce.Default()
}

// RunNonce writes cfg.Nonce.Count hex-encoded nonces of cfg.Nonce.Size bytes to w.
func RunNonce(cfg *config.Config, w io.Writer) error {
	gen := generator(cfg)

	if !gen.Secure() && !cfg.Quiet {
		fmt.Fprintf(w, "# source %s is not hardware-backed\n", gen.Source())
	}

	for range max(cfg.Nonce.Count, 1) {
		n, err := gen.Generate(cfg.Nonce.Size)
		if err != nil {
			return fmt.Errorf("generating nonce: %w", err)
		}

		fmt.Fprintln(w, hex.EncodeToString(n))
	}

	return nil
}

// RunKeygen writes a fresh hex-encoded key of cfg.Nonce.Bits bits to w.
func RunKeygen(cfg *config.Config, w io.Writer) error {
	const bitsPerByte = 8

	key, err := generator(cfg).Generate(cfg.Nonce.Bits / bitsPerByte)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	defer clear(key)

	fmt.Fprintln(w, hex.EncodeToString(key))

	return nil
}

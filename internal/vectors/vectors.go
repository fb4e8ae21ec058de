// Package vectors embeds the published AES known-answer vectors used by the
// tests and by the selftest command.
package vectors

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed vectors.yml
var raw []byte

// Vector is a single known-answer case. Byte fields are hex, whitespace allowed.
type Vector struct {
	Name       string `yaml:"name"`
	Mode       string `yaml:"mode"`
	Key        string `yaml:"key"`
	IV         string `yaml:"iv,omitempty"`
	Plaintext  string `yaml:"plaintext"`
	Ciphertext string `yaml:"ciphertext"`
}

// Decoded holds the binary form of a Vector.
type Decoded struct {
	Key        []byte
	IV         []byte
	Plaintext  []byte
	Ciphertext []byte
}

// Load parses the embedded vector file.
func Load() ([]Vector, error) {
	var vectors []Vector
	if err := yaml.Unmarshal(raw, &vectors); err != nil {
		return nil, fmt.Errorf("parsing vectors: %w", err)
	}

	return vectors, nil
}

// Filter returns the vectors for the given mode name ("ecb", "cbc", "ctr").
func Filter(vectors []Vector, mode string) []Vector {
	var out []Vector

	for _, v := range vectors {
		if strings.EqualFold(v.Mode, mode) {
			out = append(out, v)
		}
	}

	return out
}

// Decode converts the hex fields of v.
func (v Vector) Decode() (Decoded, error) {
	var (
		d   Decoded
		err error
	)

	fields := []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"key", v.Key, &d.Key},
		{"iv", v.IV, &d.IV},
		{"plaintext", v.Plaintext, &d.Plaintext},
		{"ciphertext", v.Ciphertext, &d.Ciphertext},
	}

	for _, f := range fields {
		*f.out, err = hex.DecodeString(strings.Join(strings.Fields(f.in), ""))
		if err != nil {
			return Decoded{}, fmt.Errorf("vector %q: decoding %s: %w", v.Name, f.name, err)
		}
	}

	return d, nil
}

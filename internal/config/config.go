// Package config holds the command-line configuration of aesgo.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/idelchi/gogen/pkg/key"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Show prints the resolved configuration and exits
	Show bool

	// Quiet suppresses non-error output
	Quiet bool

	// Parallel is the number of files processed at once
	Parallel int `validate:"gte=1"`

	// LogLevel selects the diagnostic log level on stderr
	LogLevel string `mapstructure:"log-level" validate:"omitempty,loglevel"`

	// Key holds the hex-encoded key or the file containing it
	Key Key `mapstructure:",squash"`

	// Cipher selects the algorithm for encryption
	Cipher Cipher `mapstructure:",squash"`

	// Suffixes for encrypted and decrypted output files
	Suffixes Suffixes `mapstructure:",squash"`

	// Delete removes the input after successful processing
	Delete bool

	// PreserveTimestamps copies the input modification time to the output
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Stats prints a summary after processing
	Stats bool

	// Dry lists what would be processed without writing anything
	Dry bool

	// Nonce configures the nonce and keygen commands
	Nonce Nonce `mapstructure:",squash"`

	// Decrypt is set by the decrypt command
	Decrypt bool `mapstructure:"-"`

	// Files are the positional arguments
	Files []string `mapstructure:"-"`
}

// Key is the key material source. Exactly one of String and File may be set.
type Key struct {
	String string `mapstructure:"key"      validate:"exclusive=File" label:"--key"`
	File   string `mapstructure:"key-file" label:"--key-file"`
}

// Cipher selects key size, chaining mode and padding.
type Cipher struct {
	// Size is empty to derive the key size from the key length
	Size    string `mapstructure:"key-size" validate:"omitempty,keysize"  label:"--key-size"`
	Mode    string `mapstructure:"mode"     validate:"omitempty,chaining" label:"--mode"`
	Padding string `mapstructure:"padding"  validate:"omitempty,padding"  label:"--padding"`
}

// Suffixes holds the file name suffixes for output files.
type Suffixes struct {
	Encrypt string `mapstructure:"encrypt-ext"`
	Decrypt string `mapstructure:"decrypt-ext"`
}

// Nonce configures nonce and key generation.
type Nonce struct {
	Size     int  `mapstructure:"size"     validate:"omitempty,gte=1,lte=4096" label:"--size"`
	Count    int  `mapstructure:"count"    validate:"omitempty,gte=1"          label:"--count"`
	Bits     int  `mapstructure:"bits"     validate:"omitempty,oneof=128 192 256" label:"--bits"`
	Software bool `mapstructure:"software"`
}

// ErrNoKey is returned when neither a key nor a key file was given.
var ErrNoKey = errors.New("no key given: use --key, --key-file or AESGO_KEY")

// Validate validates the configuration against the struct tags.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := registerValidators(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", describe(err))
	}

	return nil
}

// Load returns the raw key bytes from the hex string or the key file.
func (k Key) Load() ([]byte, error) {
	var (
		material []byte
		err      error
	)

	switch {
	case k.String != "":
		material, err = key.FromHex(k.String)
	case k.File != "":
		var data []byte

		data, err = os.ReadFile(filepath.Clean(k.File))
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		material, err = key.FromHex(string(data))
	default:
		return nil, ErrNoKey
	}

	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	return material, nil
}

// Package commands provides the command-line interface for the aesgo tool.
//
// It implements commands for:
//   - encryption
//   - decryption
//   - nonce and key generation
//   - a known-answer self test
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/encryption"
	"github.com/idelchi/aesgo/pkg/nonce"
)

// envPrefix is the prefix of environment variables that set flags.
const envPrefix = "AESGO"

// preRun returns a PreRunE handler that binds flags and environment into cfg,
// resolves positional args into cfg.Files and validates the configuration.
func preRun(cfg *config.Config, defaultArgs ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		if len(args) == 0 {
			args = defaultArgs
		}

		cfg.Files = args

		if err := cfg.Validate(); err != nil {
			return err
		}

		setupLogging(cfg.LogLevel)

		return nil
	}
}

// run wraps a command body so that --show prints the configuration instead.
func run(cfg *config.Config, body func() error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		if cfg.Show {
			return show(cfg)
		}

		return body()
	}
}

// show prints the configuration as YAML with the key redacted.
func show(cfg *config.Config) error {
	redacted := *cfg
	if redacted.Key.String != "" {
		redacted.Key.String = "<redacted>"
	}

	out, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}

	fmt.Print(string(out)) //nolint:forbidigo

	return nil
}

// setupLogging routes the library loggers to stderr at the given level.
func setupLogging(level string) {
	backend := btclog.NewBackend(os.Stderr)

	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelWarn
	}

	nonceLog := backend.Logger("NONC")
	nonceLog.SetLevel(lvl)
	nonce.UseLogger(nonceLog)

	procLog := backend.Logger("PROC")
	procLog.SetLevel(lvl)
	encryption.UseLogger(procLog)
}

package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/logic"
)

// NewNonceCommand creates a new cobra command printing fresh nonces.
func NewNonceCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nonce [flags]",
		Aliases: []string{"iv"},
		Short:   "Print hex-encoded nonces",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg),
		RunE: run(cfg, func() error {
			return logic.RunNonce(cfg, os.Stdout)
		}),
	}

	cmd.Flags().Int("size", 16, "Nonce size in bytes")
	cmd.Flags().IntP("count", "n", 1, "Number of nonces to print")

	return cmd
}

// NewKeygenCommand creates a new cobra command printing a fresh key.
func NewKeygenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg),
		RunE: run(cfg, func() error {
			return logic.RunKeygen(cfg, os.Stdout)
		}),
	}

	cmd.Flags().Int("bits", 256, "Key size in bits: 128, 192 or 256")

	return cmd
}

// NewSelfTestCommand creates a new cobra command replaying the known-answer vectors.
func NewSelfTestCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "selftest",
		Aliases: []string{"test"},
		Short:   "Check the cipher against published test vectors",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg),
		RunE: run(cfg, func() error {
			return logic.RunSelfTest(os.Stdout, cfg.Quiet)
		}),
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Long: `Encrypt files or directories. Each file is written next to the input with the
encrypted suffix, prefixed by a header recording key size, mode, padding and IV.
A fresh IV is generated for every file.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg),
		RunE: run(cfg, func() error {
			return logic.Run(cfg)
		}),
	}

	cmd.Flags().String("key-size", "", "Key size: 128, 192 or 256 (default: derived from the key length)")
	cmd.Flags().StringP("mode", "m", "cbc", "Chaining mode: cbc, ctr or ecb (ecb leaks plaintext structure)")
	cmd.Flags().StringP("padding", "p", "pkcs7", "Padding: pkcs7, ansix923, iso7816 or none (ignored for ctr)")

	return cmd
}

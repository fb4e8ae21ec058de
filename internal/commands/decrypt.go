package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt [flags] [paths...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Long: `Decrypt files or directories. The algorithm is read from each file's header;
only the key is needed. Directories are searched for files with the encrypted
suffix. Without arguments the current directory is used.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := preRun(cfg, ".")(cmd, args); err != nil {
				return err
			}

			cfg.Decrypt = true

			return nil
		},
		RunE: run(cfg, func() error {
			return logic.Run(cfg)
		}),
	}
}

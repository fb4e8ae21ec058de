package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/gogen/pkg/cobraext"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "aesgo [flags] command [flags]"
	root.Short = "AES file encryption utility"
	root.Long = `A file encryption utility built on a constant-time AES implementation.
Supports AES-128/192/256 in ECB, CBC and CTR modes with PKCS#7, ANSI X9.23 and
ISO/IEC 7816-4 padding. IVs and keys are drawn from RDSEED/RDRAND when the CPU
has them, with a software fallback otherwise.

Every flag can also be set through an AESGO_ environment variable,
for example AESGO_KEY or AESGO_LOG_LEVEL.`

	flags := root.PersistentFlags()

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	flags.String("log-level", "warn", "Diagnostic log level: trace, debug, info, warn, error, critical or off")

	flags.StringP("key", "k", "", "Encryption key (16, 24 or 32 bytes, hex-encoded)")
	flags.StringP("key-file", "f", "", "Path to the key file with the encryption key (hex-encoded)")

	flags.String("encrypt-ext", ".aes", "Suffix to append to encrypted files")
	flags.String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")
	flags.Bool("preserve-timestamps", false, "Copy the modification time of the input to the output")
	flags.Bool("stats", false, "Print a summary after processing")
	flags.Bool("dry", false, "List the files that would be processed without writing anything")
	flags.Bool("software", false, "Use the software nonce generator even if hardware entropy is available")

	root.AddCommand(
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewNonceCommand(cfg),
		NewKeygenCommand(cfg),
		NewSelfTestCommand(cfg),
	)

	return root
}

// Command aesgo encrypts and decrypts files with AES.
package main

import (
	"os"

	"github.com/idelchi/aesgo/internal/commands"
	"github.com/idelchi/aesgo/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals
var version = "unknown - unofficial build"

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		os.Exit(1)
	}
}

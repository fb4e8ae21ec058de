// Package logic implements the core business logic for the encryption/decryption.
package logic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/encryption"
)

// Run encrypts or decrypts the configured files.
func Run(cfg *config.Config) error {
	start := time.Now()

	scanned, err := resolveFiles(cfg)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	if len(cfg.Files) == 0 {
		return errors.New("no files to process")
	}

	if cfg.Dry {
		return dryRun(cfg, scanned, start)
	}

	proc, err := encryption.NewProcessor(cfg)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	summary, err := proc.ProcessFiles()

	if cfg.Stats {
		printStats(scanned, summary, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// resolveFiles expands directories in the positional arguments. Files found
// inside directories are kept only if they carry the encrypted suffix when
// decrypting, and only if they lack it when encrypting.
// Returns the number of files seen before that filtering.
func resolveFiles(cfg *config.Config) (int, error) {
	candidates, err := collectFiles(cfg.Files)
	if err != nil {
		return 0, err
	}

	files := make([]string, 0, len(candidates))

	for _, c := range candidates {
		if c.walked && cfg.Suffixes.Encrypt != "" && strings.HasSuffix(c.path, cfg.Suffixes.Encrypt) != cfg.Decrypt {
			continue
		}

		files = append(files, c.path)
	}

	cfg.Files = files

	return len(candidates), nil
}

type candidate struct {
	path   string
	walked bool
}

// collectFiles walks all positional args and returns every file path found.
func collectFiles(args []string) ([]candidate, error) {
	var paths []candidate

	seen := make(map[string]struct{})

	add := func(path string, walked bool) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; !ok {
			seen[clean] = struct{}{}
			paths = append(paths, candidate{path: clean, walked: walked})
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg, false)

			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.Type().IsRegular() {
				add(path, true)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %q: %w", arg, err)
		}
	}

	return paths, nil
}

// dryRun previews what would be processed without actually encrypting/decrypting.
func dryRun(cfg *config.Config, scanned int, start time.Time) error {
	var summary encryption.Summary

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			fmt.Printf("Would process %q -> %q\n", file, encryption.OutputPath(file, cfg)) //nolint:forbidigo
		}

		summary.Processed++

		if info, err := os.Stat(file); err == nil {
			summary.BytesIn += info.Size()
		}
	}

	if cfg.Stats {
		printStats(scanned, summary, time.Since(start))
	}

	return nil
}

func printStats(scanned int, s encryption.Summary, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", scanned-s.Processed-s.Errored)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", s.Processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", s.Errored)
	//nolint:gosec // sizes are sums of file sizes and never negative
	fmt.Fprintf(os.Stderr, "  Read:      %s\n", humanize.IBytes(uint64(max(0, s.BytesIn))))
	//nolint:gosec // sizes are sums of file sizes and never negative
	fmt.Fprintf(os.Stderr, "  Written:   %s\n", humanize.IBytes(uint64(max(0, s.BytesOut))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))

	if seconds := duration.Seconds(); seconds > 0 && s.BytesIn > 0 {
		fmt.Fprintf(os.Stderr, "  Rate:      %s/s\n", humanize.IBytes(uint64(float64(s.BytesIn)/seconds)))
	}
}

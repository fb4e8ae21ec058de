package encryption

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/aesgo/internal/config"
	"github.com/idelchi/aesgo/internal/fileutil"
	"github.com/idelchi/aesgo/pkg/aes"
	"github.com/idelchi/aesgo/pkg/blockcipher"
	"github.com/idelchi/aesgo/pkg/mode"
	"github.com/idelchi/aesgo/pkg/nonce"
	"github.com/idelchi/aesgo/pkg/padding"
)

// Processor handles the encryption and decryption of files.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// key stores raw key bytes
	key []byte

	// cipher is the handle used for encryption, nil when decrypting
	cipher *blockcipher.Cipher

	// opts are passed to every handle the processor builds
	opts []blockcipher.Option

	// results channels processing outcomes to the printer goroutine
	results chan Result
}

// NewProcessor creates a new Processor with the given configuration.
// For encryption it validates the algorithm selection against the key up front.
func NewProcessor(cfg *config.Config) (*Processor, error) {
	key, err := cfg.Key.Load()
	if err != nil {
		return nil, err
	}

	if _, err := blockcipher.KeySizeFor(len(key)); err != nil {
		return nil, fmt.Errorf("checking key: %w", err)
	}

	processor := &Processor{
		cfg:     cfg,
		key:     key,
		results: make(chan Result, len(cfg.Files)),
	}

	if cfg.Nonce.Software {
		gen := nonce.New(nonce.WithCapabilities(nonce.Capabilities{}))
		processor.opts = append(processor.opts, blockcipher.WithNonceGenerator(gen))
	}

	if cfg.Decrypt {
		return processor, nil
	}

	size, chaining, pad, err := selection(cfg.Cipher, len(key))
	if err != nil {
		return nil, err
	}

	processor.cipher, err = blockcipher.New(key, size, chaining, pad, processor.opts...)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	log.Debugf("Encrypting with %v in %v mode, padding %v", size, chaining, processor.cipher.Padding())

	if chaining == mode.ECB {
		log.Warnf("ECB mode reveals repeated plaintext blocks; prefer cbc or ctr")
	}

	return processor, nil
}

// selection parses the configured algorithm. An empty key size follows the key length.
func selection(c config.Cipher, keyLen int) (aes.KeySize, mode.Kind, padding.Mode, error) {
	var (
		size aes.KeySize
		err  error
	)

	if c.Size == "" {
		size, err = blockcipher.KeySizeFor(keyLen)
	} else {
		size, err = blockcipher.ParseKeySize(c.Size)
	}

	if err != nil {
		return 0, 0, 0, fmt.Errorf("key size: %w", err)
	}

	chaining, err := blockcipher.ParseChainingMode(c.Mode)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("mode: %w", err)
	}

	pad, err := blockcipher.ParsePaddingMode(c.Padding)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("padding: %w", err)
	}

	return size, chaining, pad, nil
}

// ProcessFiles concurrently processes all files specified in the configuration.
// It encrypts or decrypts files based on the configuration settings and
// returns the aggregated outcome.
//
//nolint:cyclop,gocognit
func (p *Processor) ProcessFiles() (summary Summary, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			summary.add(result)

			if result.Error != nil {
				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)

				continue
			}

			if !p.cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", result.Input, result.Output) //nolint:forbidigo
			}

			if p.cfg.Delete {
				if err := os.Remove(result.Input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
				} else if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", result.Input) //nolint:forbidigo
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			outPath := OutputPath(file, p.cfg)

			in, out, err := p.processFile(file, outPath)
			if err != nil {
				p.results <- Result{Input: file, Error: err}

				return err
			}

			p.results <- Result{Input: file, Output: outPath, InputSize: in, OutputSize: out}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	if err != nil {
		return summary, fmt.Errorf("processing files: %w", err)
	}

	return summary, nil
}

// Encrypt reads all of reader, encrypts it and writes header and ciphertext to writer.
func (p *Processor) Encrypt(reader io.Reader, writer io.Writer, executable bool) error {
	if p.cipher == nil {
		return errors.New("processor was created for decryption")
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	ciphertext, iv, err := p.cipher.Encrypt(plaintext, nil)
	clear(plaintext)

	if err != nil {
		return err
	}

	header, err := Envelope{
		KeySize:    p.cipher.KeySize(),
		Mode:       p.cipher.Mode(),
		Padding:    p.cipher.Padding(),
		Executable: executable,
		IV:         iv,
	}.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if _, err := writer.Write(ciphertext); err != nil {
		return fmt.Errorf("writing ciphertext: %w", err)
	}

	return nil
}

// Decrypt reads an encrypted stream, decrypts it using the algorithm recorded
// in its header and writes the plaintext to writer. It returns whether the
// original file was executable.
func (p *Processor) Decrypt(reader io.Reader, writer io.Writer) (bool, error) {
	env, err := ReadEnvelope(reader)
	if err != nil {
		return false, err
	}

	handle, err := blockcipher.New(p.key, env.KeySize, env.Mode, env.Padding, p.opts...)
	if err != nil {
		return false, fmt.Errorf("creating cipher for %v/%v: %w", env.KeySize, env.Mode, err)
	}

	ciphertext, err := io.ReadAll(reader)
	if err != nil {
		return false, fmt.Errorf("reading ciphertext: %w", err)
	}

	plaintext, err := handle.Decrypt(ciphertext, env.IV)
	if err != nil {
		return false, err
	}

	defer clear(plaintext)

	if _, err := writer.Write(plaintext); err != nil {
		return false, fmt.Errorf("writing plaintext: %w", err)
	}

	return env.Executable, nil
}

// processFile handles the encryption or decryption of a single file.
// It writes to a temporary file and performs an atomic rename on completion.
func (p *Processor) processFile(filename, outPath string) (inSize, outSize int64, err error) {
	tc, err := fileutil.NewTempContext(filename, outPath)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	inFile, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	exec := tc.IsExec

	if p.cfg.Decrypt {
		log.Debugf("Decrypting %q", filename)

		if exec, err = p.Decrypt(inFile, tc.TmpFile); err != nil {
			return 0, 0, fmt.Errorf("decrypting file: %w", err)
		}
	} else {
		log.Debugf("Encrypting %q", filename)

		if err = p.Encrypt(inFile, tc.TmpFile, exec); err != nil {
			return 0, 0, fmt.Errorf("encrypting file: %w", err)
		}
	}

	if err = inFile.Close(); err != nil {
		return 0, 0, fmt.Errorf("closing input file: %w", err)
	}

	if err = tc.Commit(outPath, exec); err != nil {
		return 0, 0, err
	}

	outSize, err = fileutil.FinalizeOutput(outPath, p.cfg.PreserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return 0, 0, fmt.Errorf("finalizing output: %w", err)
	}

	return tc.SrcInfo.Size(), outSize, nil
}

// OutputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func OutputPath(filename string, cfg *config.Config) string {
	ext := cfg.Suffixes.Encrypt

	if cfg.Decrypt {
		filename = strings.TrimSuffix(filename, cfg.Suffixes.Encrypt)
		ext = cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}

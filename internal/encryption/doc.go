// Package encryption encrypts and decrypts whole files with AES in ECB, CBC
// or CTR mode. Each output file starts with a small header recording the
// algorithm and IV, so decryption needs only the key.
// Files are processed concurrently and written atomically.
package encryption

//go:build amd64

package nonce

// hwCompiled reports whether this build can execute the entropy instructions.
const hwCompiled = true

// rdseed64 executes RDSEED once. ok is false when the instruction reported
// that no seed was ready.
func rdseed64() (val uint64, ok bool)

// rdrand64 executes RDRAND once. ok is false when the DRNG underflowed.
func rdrand64() (val uint64, ok bool)

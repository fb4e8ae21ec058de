package nonce

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// Capabilities describes which hardware entropy instructions can be used.
type Capabilities struct {
	// RDSEED is the direct entropy-conditioner read (Broadwell, Zen and later).
	RDSEED bool
	// RDRAND is the hardware DRBG read (Ivy Bridge and later).
	RDRAND bool
}

// Hardware reports whether any hardware source is usable.
func (c Capabilities) Hardware() bool {
	return c.RDSEED || c.RDRAND
}

// detected probes the CPU once per process.
//
//nolint:gochecknoglobals
var detected = sync.OnceValue(func() Capabilities {
	caps := Capabilities{
		RDSEED: hwCompiled && cpu.X86.HasRDSEED,
		RDRAND: hwCompiled && cpu.X86.HasRDRAND,
	}

	log.Debugf("Entropy capabilities: rdseed=%v rdrand=%v", caps.RDSEED, caps.RDRAND)

	return caps
})

// Detect returns the process-wide capability probe result.
// The CPU is queried on the first call only.
func Detect() Capabilities {
	return detected()
}

//go:build !amd64

package nonce

const hwCompiled = false

func rdseed64() (uint64, bool) { return 0, false }

func rdrand64() (uint64, bool) { return 0, false }

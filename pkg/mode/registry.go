package mode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/lightninglabs/neutrino/cache/lru"

	"github.com/idelchi/aesgo/pkg/cipherr"
)

// DefaultRegistryCapacity is the number of (key, counter block) pairs the
// process-wide registry remembers.
const DefaultRegistryCapacity = 1 << 16

// KeyID identifies a key without revealing it.
type KeyID [sha256.Size]byte

// pair is a single CTR claim.
type pair struct {
	key     KeyID
	counter [16]byte
}

// claimed is the cache value; every entry weighs one unit.
type claimed struct{}

// Size implements cache.Value.
func (claimed) Size() (uint64, error) { return 1, nil }

// Registry remembers which counter blocks each key has encrypted under.
//
// Detection is best effort: the least recently claimed pairs are evicted
// once the capacity is reached, nothing survives a restart, and only the
// initial counter block is recorded, so overlapping counter ranges started
// from different blocks are not caught.
type Registry struct {
	mu   sync.Mutex
	salt [sha256.Size]byte
	seen *lru.Cache[pair, claimed]
}

// NewRegistry returns an empty registry holding up to capacity pairs.
// It fails with EntropyUnavailable if the operating system generator cannot
// provide a salt.
func NewRegistry(capacity uint64) (*Registry, error) {
	return newRegistry(capacity, rand.Reader)
}

func newRegistry(capacity uint64, salt io.Reader) (*Registry, error) {
	r := &Registry{
		seen: lru.NewCache[pair, claimed](capacity),
	}

	if _, err := io.ReadFull(salt, r.salt[:]); err != nil {
		return nil, cipherr.Newf(cipherr.EntropyUnavailable, "reading registry salt: %v", err)
	}

	return r, nil
}

// KeyID derives the registry identity of key: HMAC-SHA256 under a salt
// private to this registry.
func (r *Registry) KeyID(key []byte) KeyID {
	mac := hmac.New(sha256.New, r.salt[:])
	mac.Write(key)

	var id KeyID

	copy(id[:], mac.Sum(nil))

	return id
}

// Claim records the counter block for id, failing with NonceReuse if it
// was already recorded.
func (r *Registry) Claim(id KeyID, counter []byte) error {
	p := pair{key: id}
	if len(counter) != len(p.counter) {
		return cipherr.Newf(cipherr.InvalidBlockAlignment, "counter block length %d, want %d", len(counter), len(p.counter))
	}

	copy(p.counter[:], counter)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.seen.Get(p); err == nil {
		return cipherr.Newf(cipherr.NonceReuse, "counter block %x already used with this key", counter)
	}

	if _, err := r.seen.Put(p, claimed{}); err != nil {
		return fmt.Errorf("recording counter block: %w", err)
	}

	return nil
}

// Len returns the number of remembered pairs.
func (r *Registry) Len() int {
	return r.seen.Len()
}

//nolint:gochecknoglobals
var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return NewRegistry(DefaultRegistryCapacity)
})

// DefaultRegistry returns the process-wide registry, built on first use.
// A failure to build it is remembered and returned on every call.
func DefaultRegistry() (*Registry, error) {
	return defaultRegistry()
}

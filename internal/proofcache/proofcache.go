// Package proofcache memoizes positive range/surjection proof verification
// results keyed by a content digest of the proof plus its binding context
// (spec §4.B). Two independent caches exist — one per proof kind — since
// their key material differs. Only verified (positive) results are ever
// stored; negatives are never cached.
//
// Both caches are thread-safe, size-bounded LRU-style sets: spec §3
// Lifecycle and §5 require a bounded cache so a consensus node can't be run
// out of memory by an attacker submitting an endless stream of distinct
// valid proofs. Grounded on
// _examples/wyf-ACCEPT-eth2030/pkg/proofs/proof_cache.go's ProofCache
// (maxEntries + insertOrder FIFO eviction over a [32]byte-keyed map),
// generalized here into shardCount independent sub-caches so the eviction
// lock's contention is spread the same way the unbounded version's was.
package proofcache

import (
	"crypto/sha256"
	"log"
	"os"
	"sort"
	"sync"
)

// debugLog gates eviction/capacity tracing behind VERIFIER_DEBUG_LOG, same
// toggle and bracketed-tag convention as internal/verifier's debugLog.
var debugLog = os.Getenv("VERIFIER_DEBUG_LOG") == "1"

const shardCount = 32

// DefaultMaxEntries is used when a cache is constructed with maxEntries <= 0
// (mirrors ProofCache.NewProofCache's same fallback).
const DefaultMaxEntries = 1024

// cache is a sharded, size-bounded set of 32-byte digests, safe for
// concurrent readers and writers. Each shard independently evicts its
// oldest entry once it reaches its share of the overall entry budget.
type cache struct {
	shards [shardCount]shard
}

type shard struct {
	mu          sync.Mutex
	m           map[[32]byte]struct{}
	insertOrder [][32]byte
	maxEntries  int
}

// newCache allocates a cache bounded to roughly maxEntries total entries,
// spread evenly across shardCount shards: each shard holds
// maxEntries/shardCount entries, but never fewer than one, so a maxEntries
// below shardCount still allows up to shardCount entries. maxEntries <= 0
// falls back to DefaultMaxEntries.
func newCache(maxEntries int) *cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	perShard := maxEntries / shardCount
	if perShard < 1 {
		perShard = 1
	}

	c := &cache{}
	for i := range c.shards {
		c.shards[i].m = make(map[[32]byte]struct{})
		c.shards[i].maxEntries = perShard
	}
	return c
}

func (c *cache) shardFor(key [32]byte) *shard {
	return &c.shards[key[0]%shardCount]
}

func (c *cache) has(key [32]byte) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

// store inserts key, evicting the oldest entry in its shard first if the
// shard is already at capacity. Re-storing an already-present key is a
// no-op: it doesn't move the key to the back of the eviction order, since a
// positive verification result never needs to be "refreshed."
func (c *cache) store(key [32]byte) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[key]; exists {
		return
	}

	for len(s.m) >= s.maxEntries && len(s.insertOrder) > 0 {
		oldest := s.insertOrder[0]
		s.insertOrder = s.insertOrder[1:]
		delete(s.m, oldest)
		if debugLog {
			log.Printf("[ProofCache] evicted oldest entry %x, shard at capacity (max=%d)", oldest, s.maxEntries)
		}
	}

	s.m[key] = struct{}{}
	s.insertOrder = append(s.insertOrder, key)
}

func (c *cache) len() int {
	n := 0
	for i := range c.shards {
		c.shards[i].mu.Lock()
		n += len(c.shards[i].m)
		c.shards[i].mu.Unlock()
	}
	return n
}

// RangeCache memoizes positive range-proof verifications.
type RangeCache struct{ c *cache }

// NewRangeCache allocates an empty range-proof cache bounded to maxEntries
// total entries (PROOF_CACHE_SIZE). maxEntries <= 0 uses DefaultMaxEntries.
func NewRangeCache(maxEntries int) *RangeCache { return &RangeCache{c: newCache(maxEntries)} }

func (c *RangeCache) Has(key [32]byte) bool { return c.c.has(key) }
func (c *RangeCache) Store(key [32]byte)    { c.c.store(key) }
func (c *RangeCache) Len() int              { return c.c.len() }

// SurjectionCache memoizes positive surjection-proof verifications.
type SurjectionCache struct{ c *cache }

// NewSurjectionCache allocates an empty surjection-proof cache bounded to
// maxEntries total entries (PROOF_CACHE_SIZE). maxEntries <= 0 uses
// DefaultMaxEntries.
func NewSurjectionCache(maxEntries int) *SurjectionCache {
	return &SurjectionCache{c: newCache(maxEntries)}
}

func (c *SurjectionCache) Has(key [32]byte) bool { return c.c.has(key) }
func (c *SurjectionCache) Store(key [32]byte)    { c.c.store(key) }
func (c *SurjectionCache) Len() int              { return c.c.len() }

// RangeKey is the content digest of (proof ‖ commitment ‖ asset commitment ‖
// script), the memoization key for range-proof results (spec §4.B).
func RangeKey(proof []byte, commitment, assetCommitment [33]byte, script []byte) [32]byte {
	h := sha256.New()
	h.Write(proof)
	h.Write(commitment[:])
	h.Write(assetCommitment[:])
	h.Write(script)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SurjectionKey is the content digest of (proof ‖ sorted target-generator
// bytes ‖ output generator ‖ witness-txid). Targets are sorted before
// hashing so the key is independent of the order the caller happened to
// pass them in — the verifier's target_generators accumulation order is
// consensus-visible for surjection *verification* (spec §8 P7) but must not
// leak into the cache key, or two semantically identical proofs checked
// against differently-ordered target lists would miss each other.
func SurjectionKey(proof []byte, targets [][33]byte, outputGen [33]byte, witnessTxID [32]byte) [32]byte {
	sorted := make([][33]byte, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		return string(sorted[i][:]) < string(sorted[j][:])
	})

	h := sha256.New()
	h.Write(proof)
	for _, t := range sorted {
		h.Write(t[:])
	}
	h.Write(outputGen[:])
	h.Write(witnessTxID[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

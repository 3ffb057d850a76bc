// Package token implements the one-time token protocol that gates every
// state-mutating request to the immediately preceding view.
//
// Each authenticated identity holds at most one live token. A token is issued
// on every view (overwriting any prior one) and consumed exactly once by a
// successful validation; a second presentation of the same token fails. The
// store is process-local shared state, so issue and consume for a given
// identity are serialized through a sharded mutex map to preserve the
// one-shot invariant under concurrent requests.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"hash/fnv"
	"sync"
)

// Store issues and consumes per-identity one-time tokens.
//
// Implementations must guarantee that for any identity, ValidateAndConsume
// succeeds at most once per issued token, and that a failed validation leaves
// the stored token untouched.
type Store interface {
	// Issue creates a new random token for identity, replacing any previous
	// token, and returns it for embedding in the rendered view.
	Issue(identity string) (string, error)

	// ValidateAndConsume reports whether presented exactly matches the live
	// token for identity, removing it on success. Comparison is constant-time.
	ValidateAndConsume(identity, presented string) bool
}

const shardCount = 32

type shard struct {
	mu     sync.Mutex
	tokens map[string]string
}

// MemoryStore is the in-process Store implementation. Identities are spread
// over a fixed number of shards; all operations on one identity funnel
// through its shard's mutex, so a GET re-issuing a token and a POST consuming
// the previous one can never interleave mid-operation.
type MemoryStore struct {
	tokenBytes int
	shards     [shardCount]*shard
}

// NewMemoryStore returns a MemoryStore generating tokens of tokenBytes random
// bytes (hex-encoded). Values below 8 are coerced to 16 (128 bits).
func NewMemoryStore(tokenBytes int) *MemoryStore {
	if tokenBytes < 8 {
		tokenBytes = 16
	}
	s := &MemoryStore{tokenBytes: tokenBytes}
	for i := range s.shards {
		s.shards[i] = &shard{tokens: make(map[string]string)}
	}
	return s
}

// Issue implements Store.
func (s *MemoryStore) Issue(identity string) (string, error) {
	buf := make([]byte, s.tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	tok := hex.EncodeToString(buf)

	sh := s.shardFor(identity)
	sh.mu.Lock()
	sh.tokens[identity] = tok
	sh.mu.Unlock()
	return tok, nil
}

// ValidateAndConsume implements Store.
func (s *MemoryStore) ValidateAndConsume(identity, presented string) bool {
	if presented == "" {
		return false
	}
	sh := s.shardFor(identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	stored, ok := sh.tokens[identity]
	if !ok {
		return false
	}
	// subtle.ConstantTimeCompare requires equal lengths; the length check
	// itself leaks only the token size, which is public.
	if len(stored) != len(presented) {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return false
	}
	delete(sh.tokens, identity)
	return true
}

func (s *MemoryStore) shardFor(identity string) *shard {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return s.shards[h.Sum32()%shardCount]
}

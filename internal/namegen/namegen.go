// Package namegen derives opaque, fixed-length, filesystem-safe fragment
// names and guarantees uniqueness within one encode run.
package namegen

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/zeebo/blake3"
)

// Alphabet is the 32-character set fragment names are drawn from.
// Lowercase only so names survive case-insensitive filesystems; i/l/o/0/1
// are excluded to keep names transcribable.
const Alphabet = "abcdefghjkmnpqrstuvwxyz23456789_"

// maxAttempts bounds the collision-retry loop. With a 32-character
// alphabet even short names rarely collide, so exhausting the bound means
// the name length is genuinely too small for the fragment count.
const maxAttempts = 64

// ErrInvalidLength reports a name length below 1.
var ErrInvalidLength = errors.New("namegen: name length must be >= 1")

// ErrNameSpaceExhausted reports that no collision-free name could be
// derived within the retry bound.
var ErrNameSpaceExhausted = errors.New("namegen: name space exhausted")

// Registry is the set of names already assigned in one encode run. The
// claim check and insert are a single critical section so concurrent
// generators cannot race for the same candidate.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry creates an empty name registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Claim records name as used. It reports false if the name was already
// claimed.
func (r *Registry) Claim(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

// Len returns the number of claimed names.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Generator derives fragment names of a fixed length.
type Generator struct {
	Length int
}

// New creates a name generator.
func New(length int) (*Generator, error) {
	if length < 1 {
		return nil, ErrInvalidLength
	}
	return &Generator{Length: length}, nil
}

// Name derives a name from the fragment digest and logical index and
// claims it in the registry. Collisions perturb the derivation with an
// attempt counter and retry up to maxAttempts before failing with
// ErrNameSpaceExhausted.
func (g *Generator) Name(fragmentDigest string, index int, reg *Registry) (string, error) {
	if g.Length < 1 {
		return "", ErrInvalidLength
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := g.derive(fragmentDigest, index, attempt)
		if reg == nil || reg.Claim(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("namegen: fragment %d: no free name of length %d after %d attempts: %w",
		index, g.Length, maxAttempts, ErrNameSpaceExhausted)
}

// derive maps the BLAKE3 extended output of (digest, index, attempt) onto
// the alphabet. The alphabet size divides 256 so each byte maps uniformly.
func (g *Generator) derive(fragmentDigest string, index, attempt int) string {
	h := blake3.New()
	_, _ = h.Write([]byte(fragmentDigest))
	var tail [8]byte
	binary.LittleEndian.PutUint32(tail[0:4], uint32(index))
	binary.LittleEndian.PutUint32(tail[4:8], uint32(attempt))
	_, _ = h.Write(tail[:])

	raw := make([]byte, g.Length)
	if _, err := io.ReadFull(h.Digest(), raw); err != nil {
		panic(fmt.Sprintf("namegen: blake3 xof failure: %v", err))
	}
	out := make([]byte, g.Length)
	for i, b := range raw {
		out[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(out)
}

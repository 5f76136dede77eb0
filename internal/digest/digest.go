// Package digest computes the truncated fidelity digest used to name
// fragments and to verify them after reassembly.
package digest

import (
	"encoding/hex"
	"errors"
	"io"

	"github.com/zeebo/blake3"
)

// NativeHexLen is the hex width of a single BLAKE3-256 digest.
const NativeHexLen = 64

// ErrInvalidLength reports a digest length below 1.
var ErrInvalidLength = errors.New("digest: length must be >= 1")

// Sum returns the lowercase hex BLAKE3 digest of data truncated to length
// characters. Lengths beyond NativeHexLen are served from the BLAKE3
// extended output stream, so any positive length is well defined and
// deterministic for the same input.
func Sum(data []byte, length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	h := blake3.New()
	_, _ = h.Write(data)
	raw := make([]byte, (length+1)/2)
	if _, err := io.ReadFull(h.Digest(), raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw)[:length], nil
}

// Sum256 returns the full-width BLAKE3 digest of data.
func Sum256(data []byte) [32]byte {
	return blake3.Sum256(data)
}

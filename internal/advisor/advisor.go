// Package advisor computes the minimum block size needed for a file so
// that the number of fragment orderings reaches a target permutation
// count. It is a standalone estimate consumed by the CLI; the encode and
// decode paths never call it.
package advisor

import (
	"errors"
	"math/big"
)

// ErrInvalidSize reports a non-positive file size.
var ErrInvalidSize = errors.New("advisor: file size must be >= 1")

// ErrInvalidTarget reports a non-positive permutation target.
var ErrInvalidTarget = errors.New("advisor: target must be >= 1")

// maxFragments caps the factorial search; past this point the advisory
// answer is no longer meaningful for a single directory of files.
const maxFragments = 1 << 20

// DefaultTarget returns 94^32, the permutation count of a 32-character
// AES-256 key over the printable ASCII alphabet. Reaching it means a
// brute-force assembly search is at least as hard as an AES-256 key
// search.
func DefaultTarget() *big.Int {
	return new(big.Int).Exp(big.NewInt(94), big.NewInt(32), nil)
}

// MinFragments returns the smallest n with n! >= target.
func MinFragments(target *big.Int) (int, error) {
	if target == nil || target.Sign() < 1 {
		return 0, ErrInvalidTarget
	}
	factorial := big.NewInt(1)
	n := 1
	for factorial.Cmp(target) < 0 {
		if n >= maxFragments {
			return 0, errors.New("advisor: target exceeds fragment cap")
		}
		n++
		factorial.Mul(factorial, big.NewInt(int64(n)))
	}
	return n, nil
}

// Advice is the advisory result for one file. Fragments and Permutations
// describe what even-slicing at BlockSize actually produces.
type Advice struct {
	Fragments    int
	BlockSize    int64
	Permutations *big.Int
}

// Plan computes the largest even-slicer block size for fileSize that
// still produces at least MinFragments(target) fragments. The block size
// is floored: rounding up would produce fewer fragments than the target
// requires. A nil target selects DefaultTarget.
func Plan(fileSize int64, target *big.Int) (Advice, error) {
	if fileSize < 1 {
		return Advice{}, ErrInvalidSize
	}
	if target == nil {
		target = DefaultTarget()
	}
	n, err := MinFragments(target)
	if err != nil {
		return Advice{}, err
	}
	if int64(n) > fileSize {
		// Fragments hold at least one byte each; a tiny file cannot reach
		// the target and the best it can do is one byte per fragment.
		n = int(fileSize)
	}
	blockSize := fileSize / int64(n)
	if blockSize < 1 {
		blockSize = 1
	}
	fragments := int((fileSize + blockSize - 1) / blockSize)
	return Advice{
		Fragments:    fragments,
		BlockSize:    blockSize,
		Permutations: factorial(fragments),
	}, nil
}

func factorial(n int) *big.Int {
	f := big.NewInt(1)
	for i := int64(2); i <= int64(n); i++ {
		f.Mul(f, big.NewInt(i))
	}
	return f
}

// Package shuffle computes the random storage-order permutation applied
// when fragment files are written out. The permutation never touches
// logical indices; it only decouples on-disk creation order from
// reconstruction order.
package shuffle

import "math/rand"

// Perm returns a uniform permutation of [0, n). The random source is
// injected so callers can fix a seed and assert exact orders.
func Perm(n int, rng *rand.Rand) []int {
	if n <= 0 {
		return nil
	}
	return rng.Perm(n)
}

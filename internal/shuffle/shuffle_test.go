package shuffle

import (
	"math/rand"
	"testing"
)

func TestPermIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for _, n := range []int{1, 2, 7, 100} {
		perm := Perm(n, rng)
		if len(perm) != n {
			t.Fatalf("n=%d: length %d", n, len(perm))
		}
		seen := make([]bool, n)
		for _, v := range perm {
			if v < 0 || v >= n {
				t.Fatalf("n=%d: value %d out of range", n, v)
			}
			if seen[v] {
				t.Fatalf("n=%d: duplicate value %d", n, v)
			}
			seen[v] = true
		}
	}
}

func TestPermDeterministicWithSeed(t *testing.T) {
	a := Perm(50, rand.New(rand.NewSource(5)))
	b := Perm(50, rand.New(rand.NewSource(5)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestPermEmpty(t *testing.T) {
	if got := Perm(0, rand.New(rand.NewSource(1))); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

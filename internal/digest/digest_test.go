package digest

import (
	"errors"
	"strings"
	"testing"
)

func TestSumLengths(t *testing.T) {
	data := []byte("jigsaw fragment payload")
	cases := []struct {
		name   string
		length int
	}{
		{name: "one", length: 1},
		{name: "sixteen", length: 16},
		{name: "odd", length: 33},
		{name: "native", length: NativeHexLen},
		{name: "extended", length: NativeHexLen + 1},
		{name: "double", length: NativeHexLen * 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sum(data, tc.length)
			if err != nil {
				t.Fatalf("Sum: %v", err)
			}
			if len(got) != tc.length {
				t.Fatalf("length mismatch: got %d want %d", len(got), tc.length)
			}
			if strings.Trim(got, "0123456789abcdef") != "" {
				t.Fatalf("non-hex output: %q", got)
			}
		})
	}
}

func TestSumDeterministic(t *testing.T) {
	a, err := Sum([]byte("same"), 40)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	b, err := Sum([]byte("same"), 40)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if a != b {
		t.Fatalf("digest not deterministic: %s vs %s", a, b)
	}
}

func TestSumTruncationIsPrefix(t *testing.T) {
	long, err := Sum([]byte("prefix law"), NativeHexLen)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	short, err := Sum([]byte("prefix law"), 12)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if !strings.HasPrefix(long, short) {
		t.Fatalf("truncated digest is not a prefix: %s / %s", short, long)
	}
}

func TestSumExtendedIsPrefixExtension(t *testing.T) {
	native, err := Sum([]byte("xof"), NativeHexLen)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	extended, err := Sum([]byte("xof"), NativeHexLen+32)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if !strings.HasPrefix(extended, native) {
		t.Fatalf("extended digest does not extend native digest")
	}
}

func TestSumDistinctInputs(t *testing.T) {
	a, _ := Sum([]byte("alpha"), 32)
	b, _ := Sum([]byte("beta"), 32)
	if a == b {
		t.Fatalf("distinct inputs collided: %s", a)
	}
}

func TestSumInvalidLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		if _, err := Sum([]byte("x"), length); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("length %d: expected ErrInvalidLength, got %v", length, err)
		}
	}
}

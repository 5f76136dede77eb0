// Package slicer partitions a source byte stream into an ordered sequence
// of contiguous fragments, either evenly sized or pseudo-randomly sized
// within a bounded range.
package slicer

import (
	"errors"
	"io"
	"math/rand"
)

// DefaultBlockSize is the default fragment size (32 KiB).
const DefaultBlockSize = 32 << 10

// ErrInvalidBlockSize reports a non-positive block size.
var ErrInvalidBlockSize = errors.New("slicer: block size must be >= 1")

// ErrUnknownKind reports an unrecognized slicer kind.
var ErrUnknownKind = errors.New("slicer: unknown kind")

// Kind selects the slicing strategy.
type Kind string

const (
	KindEven   Kind = "even"
	KindUneven Kind = "uneven"
)

// ParseKind validates a slicer kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEven:
		return KindEven, nil
	case KindUneven:
		return KindUneven, nil
	}
	return "", ErrUnknownKind
}

// Fragment is a unit produced by a splitter. Index is the fragment's
// logical position in the source stream; Offset is its starting byte.
type Fragment struct {
	Index  int
	Offset int64
	Data   []byte
}

// Splitter streams fragments to a callback in logical order.
type Splitter interface {
	Split(r io.Reader, fn func(Fragment) error) error
}

// EvenSplitter splits streams into fixed-size fragments; the final
// fragment holds the remainder.
type EvenSplitter struct {
	Size int
}

// NewEvenSplitter creates a fixed-size splitter.
func NewEvenSplitter(size int) (*EvenSplitter, error) {
	if size <= 0 {
		return nil, ErrInvalidBlockSize
	}
	return &EvenSplitter{Size: size}, nil
}

// Split streams fragments to the callback; the final fragment may be smaller.
func (s *EvenSplitter) Split(r io.Reader, fn func(Fragment) error) error {
	if s.Size <= 0 {
		return ErrInvalidBlockSize
	}
	buf := make([]byte, s.Size)
	return split(r, fn, func() []byte { return buf })
}

// UnevenSplitter splits streams into fragments whose sizes are drawn
// uniformly from [1, 2*Size] using the injected random source; the final
// fragment is truncated to the remaining bytes.
type UnevenSplitter struct {
	Size int
	Rand *rand.Rand
}

// NewUnevenSplitter creates a bounded-random-size splitter. The random
// source is required so callers control reproducibility.
func NewUnevenSplitter(size int, rng *rand.Rand) (*UnevenSplitter, error) {
	if size <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if rng == nil {
		return nil, errors.New("slicer: random source required")
	}
	return &UnevenSplitter{Size: size, Rand: rng}, nil
}

// Split streams fragments to the callback.
func (s *UnevenSplitter) Split(r io.Reader, fn func(Fragment) error) error {
	if s.Size <= 0 {
		return ErrInvalidBlockSize
	}
	buf := make([]byte, 2*s.Size)
	return split(r, fn, func() []byte {
		return buf[:1+s.Rand.Intn(2*s.Size)]
	})
}

// split drives the read loop shared by both splitters. next returns the
// buffer (and thereby the size) for the upcoming fragment.
func split(r io.Reader, fn func(Fragment) error, next func() []byte) error {
	index := 0
	var offset int64
	for {
		buf := next()
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return nil
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return err
		}
		if n == 0 {
			return nil
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		frag := Fragment{
			Index:  index,
			Offset: offset,
			Data:   data,
		}
		if err := fn(frag); err != nil {
			return err
		}
		index++
		offset += int64(n)
		if err == io.ErrUnexpectedEOF {
			return nil
		}
	}
}

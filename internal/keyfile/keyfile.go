// Package keyfile defines the manifest persisted next to the fragment
// files and its versioned binary codec. The keyfile is a structural
// record, not a cipher key: together with the fragment files it is the
// sole artifact needed to invert an encode.
package keyfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kk-code-lab/jigsaw/internal/namegen"
	"github.com/kk-code-lab/jigsaw/internal/slicer"
)

// VersionV1 is the current keyfile format version. Unknown versions are
// refused cleanly rather than best-effort parsed.
const VersionV1 = 1

// ErrUnsupportedVersion reports a keyfile version this decoder does not
// recognize.
var ErrUnsupportedVersion = errors.New("keyfile: unsupported version")

// ErrMalformedManifest reports a structurally invalid keyfile.
var ErrMalformedManifest = errors.New("keyfile: malformed manifest")

// Entry describes one fragment: its logical position, opaque file name,
// truncated fidelity digest, and byte size.
type Entry struct {
	Index  uint32
	Name   string
	Digest string
	Size   uint32
}

// Manifest is the keyfile contents. Entries are kept in logical order;
// their indices form the contiguous range [0, N-1].
type Manifest struct {
	Version      uint32
	Slicer       slicer.Kind
	BlockSize    uint32
	NameLength   uint32
	HashLength   uint32
	OriginalName string
	OriginalSize uint64
	SourceSum    [32]byte
	Entries      []Entry
}

// Validate checks structural invariants: recognized version and slicer
// kind, positive parameters, contiguous duplicate-free entry indices, and
// per-entry name/digest widths matching the recorded lengths. Entry names
// are confined to the generator alphabet and the original name may not
// carry path elements, so a hostile keyfile cannot steer fragment or
// output paths outside the vault directory.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("nil manifest: %w", ErrMalformedManifest)
	}
	if m.Version != VersionV1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	if m.Slicer != slicer.KindEven && m.Slicer != slicer.KindUneven {
		return fmt.Errorf("unknown slicer kind %q: %w", m.Slicer, ErrMalformedManifest)
	}
	if m.BlockSize < 1 || m.NameLength < 1 || m.HashLength < 1 {
		return fmt.Errorf("non-positive parameter: %w", ErrMalformedManifest)
	}
	if strings.ContainsAny(m.OriginalName, `/\`) || m.OriginalName == ".." || m.OriginalName == "." {
		return fmt.Errorf("original name %q carries path elements: %w", m.OriginalName, ErrMalformedManifest)
	}
	seen := make([]bool, len(m.Entries))
	var total uint64
	for i, e := range m.Entries {
		if int(e.Index) >= len(m.Entries) {
			return fmt.Errorf("entry %d: index %d outside [0,%d): %w", i, e.Index, len(m.Entries), ErrMalformedManifest)
		}
		if seen[e.Index] {
			return fmt.Errorf("entry %d: duplicate index %d: %w", i, e.Index, ErrMalformedManifest)
		}
		seen[e.Index] = true
		if len(e.Name) != int(m.NameLength) {
			return fmt.Errorf("entry %d: name length %d != %d: %w", i, len(e.Name), m.NameLength, ErrMalformedManifest)
		}
		if j := strings.IndexFunc(e.Name, func(r rune) bool {
			return !strings.ContainsRune(namegen.Alphabet, r)
		}); j >= 0 {
			return fmt.Errorf("entry %d: name %q has byte outside the name alphabet at %d: %w", i, e.Name, j, ErrMalformedManifest)
		}
		if len(e.Digest) != int(m.HashLength) {
			return fmt.Errorf("entry %d: digest length %d != %d: %w", i, len(e.Digest), m.HashLength, ErrMalformedManifest)
		}
		if e.Size == 0 {
			return fmt.Errorf("entry %d: zero-size fragment: %w", i, ErrMalformedManifest)
		}
		total += uint64(e.Size)
	}
	if total != m.OriginalSize {
		return fmt.Errorf("entry sizes sum to %d, original size is %d: %w", total, m.OriginalSize, ErrMalformedManifest)
	}
	return nil
}

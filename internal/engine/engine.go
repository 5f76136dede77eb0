// Package engine owns the encode and decode pipelines: slicing a source
// stream into named, digested fragments plus a keyfile manifest, and the
// inverse verification-and-concatenation path. The engine never touches
// the filesystem; fragment content is exchanged through the caller.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/zeebo/blake3"

	"github.com/kk-code-lab/jigsaw/internal/digest"
	"github.com/kk-code-lab/jigsaw/internal/keyfile"
	"github.com/kk-code-lab/jigsaw/internal/namegen"
	"github.com/kk-code-lab/jigsaw/internal/shuffle"
	"github.com/kk-code-lab/jigsaw/internal/slicer"
)

// Default parameters mirror the keyfile defaults exposed by the CLI.
const (
	DefaultNameLength = 30
	DefaultHashLength = 16
)

// Options configures an encode operation.
type Options struct {
	Slicer       slicer.Kind
	BlockSize    int
	NameLength   int
	HashLength   int
	OriginalName string

	// Rand drives uneven slicing and the storage-order shuffle. Leave nil
	// for a time-seeded source; inject a fixed seed for reproducible runs.
	Rand *rand.Rand
}

func (o *Options) normalize() error {
	if o.Slicer == "" {
		o.Slicer = slicer.KindEven
	}
	if o.Slicer != slicer.KindEven && o.Slicer != slicer.KindUneven {
		return fmt.Errorf("%w: slicer kind %q", ErrInvalidParameter, o.Slicer)
	}
	if o.BlockSize == 0 {
		o.BlockSize = slicer.DefaultBlockSize
	}
	if o.BlockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParameter, o.BlockSize)
	}
	if o.NameLength == 0 {
		o.NameLength = DefaultNameLength
	}
	if o.NameLength < 1 {
		return fmt.Errorf("%w: name length %d", ErrInvalidParameter, o.NameLength)
	}
	if o.HashLength == 0 {
		o.HashLength = DefaultHashLength
	}
	if o.HashLength < 1 {
		return fmt.Errorf("%w: hash length %d", ErrInvalidParameter, o.HashLength)
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// FragmentFile is a fragment ready to be persisted under its opaque name.
type FragmentFile struct {
	Name string
	Data []byte
}

// Encode slices the source stream, digests and names each fragment, and
// returns the keyfile manifest together with the fragment files in
// shuffled storage order. Manifest entries stay in logical order; only
// the returned file sequence is permuted.
func Encode(ctx context.Context, r io.Reader, opts Options) (*keyfile.Manifest, []FragmentFile, error) {
	if err := opts.normalize(); err != nil {
		return nil, nil, err
	}

	var splitter slicer.Splitter
	var err error
	switch opts.Slicer {
	case slicer.KindEven:
		splitter, err = slicer.NewEvenSplitter(opts.BlockSize)
	case slicer.KindUneven:
		splitter, err = slicer.NewUnevenSplitter(opts.BlockSize, opts.Rand)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	gen, err := namegen.New(opts.NameLength)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	registry := namegen.NewRegistry()

	man := &keyfile.Manifest{
		Version:      keyfile.VersionV1,
		Slicer:       opts.Slicer,
		BlockSize:    uint32(opts.BlockSize),
		NameLength:   uint32(opts.NameLength),
		HashLength:   uint32(opts.HashLength),
		OriginalName: opts.OriginalName,
	}
	var files []FragmentFile
	var size uint64
	hasher := blake3.New()
	splitErr := splitter.Split(io.TeeReader(r, hasher), func(frag slicer.Fragment) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fragmentDigest, err := digest.Sum(frag.Data, opts.HashLength)
		if err != nil {
			return err
		}
		name, err := gen.Name(fragmentDigest, frag.Index, registry)
		if err != nil {
			return err
		}
		man.Entries = append(man.Entries, keyfile.Entry{
			Index:  uint32(frag.Index),
			Name:   name,
			Digest: fragmentDigest,
			Size:   uint32(len(frag.Data)),
		})
		files = append(files, FragmentFile{Name: name, Data: frag.Data})
		size += uint64(len(frag.Data))
		return nil
	})
	if splitErr != nil {
		return nil, nil, splitErr
	}
	man.OriginalSize = size
	hasher.Sum(man.SourceSum[:0])

	perm := shuffle.Perm(len(files), opts.Rand)
	shuffled := make([]FragmentFile, len(files))
	for i, j := range perm {
		shuffled[i] = files[j]
	}
	return man, shuffled, nil
}

// Lookup resolves a fragment name to its content. It is supplied by the
// caller, which owns path resolution.
type Lookup func(name string) ([]byte, error)

// Decode verifies every fragment named by the manifest and writes the
// reconstructed stream to w in logical order. Any fragment-level failure
// aborts the whole decode; a corrupted fragment anywhere invalidates the
// reconstruction.
func Decode(ctx context.Context, man *keyfile.Manifest, lookup Lookup, w io.Writer) error {
	if err := man.Validate(); err != nil {
		return err
	}
	ordered := make([]keyfile.Entry, len(man.Entries))
	for _, e := range man.Entries {
		ordered[e.Index] = e
	}

	hasher := blake3.New()
	var total uint64
	for _, entry := range ordered {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		data, err := lookup(entry.Name)
		if err != nil {
			return fmt.Errorf("%w: fragment %q (index %d): %v", ErrMissingFragment, entry.Name, entry.Index, err)
		}
		if uint32(len(data)) != entry.Size {
			return fmt.Errorf("%w: fragment %q (index %d): got %d bytes, keyfile records %d",
				ErrSizeMismatch, entry.Name, entry.Index, len(data), entry.Size)
		}
		fragmentDigest, err := digest.Sum(data, int(man.HashLength))
		if err != nil {
			return err
		}
		if fragmentDigest != entry.Digest {
			return fmt.Errorf("%w: fragment %q (index %d): digest %s, keyfile records %s",
				ErrIntegrityMismatch, entry.Name, entry.Index, fragmentDigest, entry.Digest)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, _ = hasher.Write(data)
		total += uint64(len(data))
	}
	if total != man.OriginalSize {
		return fmt.Errorf("%w: reconstructed %d bytes, keyfile records %d",
			ErrLengthMismatch, total, man.OriginalSize)
	}
	var sum [32]byte
	hasher.Sum(sum[:0])
	if !bytes.Equal(sum[:], man.SourceSum[:]) {
		return fmt.Errorf("%w: reconstructed stream checksum differs from keyfile source checksum",
			ErrIntegrityMismatch)
	}
	return nil
}

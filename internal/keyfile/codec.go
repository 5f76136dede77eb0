package keyfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/kk-code-lab/jigsaw/internal/slicer"
)

const (
	magic       = 0x4a475357 // "JGSW"
	headerLen   = 4 + 4
	checksumLen = 32
)

const (
	kindEvenByte   = 0
	kindUnevenByte = 1
)

// Codec serializes and deserializes keyfile manifests.
type Codec interface {
	Encode(w io.Writer, m *Manifest) error
	Decode(r io.Reader) (*Manifest, error)
}

// BinaryCodec implements a compact binary keyfile format: magic, version,
// body, trailing BLAKE3 checksum of the body.
type BinaryCodec struct{}

// Encode writes a manifest with a header and checksum.
func (c *BinaryCodec) Encode(w io.Writer, m *Manifest) error {
	if m == nil {
		return errors.New("keyfile: nil manifest")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	buf := make([]byte, 0, 256)
	buf = appendU32(buf, magic)
	buf = appendU32(buf, m.Version)
	switch m.Slicer {
	case slicer.KindEven:
		buf = append(buf, kindEvenByte)
	case slicer.KindUneven:
		buf = append(buf, kindUnevenByte)
	default:
		return fmt.Errorf("unknown slicer kind %q: %w", m.Slicer, ErrMalformedManifest)
	}
	buf = appendU32(buf, m.BlockSize)
	buf = appendU32(buf, m.NameLength)
	buf = appendU32(buf, m.HashLength)
	buf = appendString(buf, m.OriginalName)
	buf = appendU64(buf, m.OriginalSize)
	buf = append(buf, m.SourceSum[:]...)
	buf = appendU32(buf, uint32(len(m.Entries)))
	for _, e := range m.Entries {
		buf = appendU32(buf, e.Index)
		buf = appendString(buf, e.Name)
		buf = appendString(buf, e.Digest)
		buf = appendU32(buf, e.Size)
	}
	checksum := blake3.Sum256(buf[headerLen:])
	if _, err := w.Write(buf); err != nil {
		return err
	}
	_, err := w.Write(checksum[:])
	return err
}

// Decode reads a manifest, validates header, checksum, and structural
// invariants, and returns the manifest. Unknown versions are refused with
// ErrUnsupportedVersion before the body is interpreted.
func (c *BinaryCodec) Decode(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerLen+checksumLen {
		return nil, fmt.Errorf("truncated keyfile: %w", ErrMalformedManifest)
	}
	body := data[:len(data)-checksumLen]
	checksum := data[len(data)-checksumLen:]
	sum := blake3.Sum256(body[headerLen:])
	if !equalBytes(sum[:], checksum) {
		return nil, fmt.Errorf("checksum mismatch: %w", ErrMalformedManifest)
	}
	if binary.LittleEndian.Uint32(body[0:4]) != magic {
		return nil, fmt.Errorf("bad magic: %w", ErrMalformedManifest)
	}
	version := binary.LittleEndian.Uint32(body[4:8])
	if version != VersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	offset := headerLen
	if offset+1+4+4+4 > len(body) {
		return nil, fmt.Errorf("truncated parameters: %w", ErrMalformedManifest)
	}
	var kind slicer.Kind
	switch body[offset] {
	case kindEvenByte:
		kind = slicer.KindEven
	case kindUnevenByte:
		kind = slicer.KindUneven
	default:
		return nil, fmt.Errorf("unknown slicer byte %d: %w", body[offset], ErrMalformedManifest)
	}
	offset++
	blockSize := binary.LittleEndian.Uint32(body[offset:])
	offset += 4
	nameLength := binary.LittleEndian.Uint32(body[offset:])
	offset += 4
	hashLength := binary.LittleEndian.Uint32(body[offset:])
	offset += 4
	originalName, n, err := readString(body[offset:])
	if err != nil {
		return nil, err
	}
	offset += n
	if offset+8+32+4 > len(body) {
		return nil, fmt.Errorf("truncated body: %w", ErrMalformedManifest)
	}
	originalSize := binary.LittleEndian.Uint64(body[offset:])
	offset += 8
	var sourceSum [32]byte
	copy(sourceSum[:], body[offset:offset+32])
	offset += 32
	entryCount := int(binary.LittleEndian.Uint32(body[offset:]))
	offset += 4
	// Each entry occupies at least 16 bytes on the wire; reject counts the
	// remaining body cannot possibly hold before allocating.
	if entryCount > (len(body)-offset)/16 {
		return nil, fmt.Errorf("entry count %d exceeds body: %w", entryCount, ErrMalformedManifest)
	}
	entries := make([]Entry, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		if offset+4 > len(body) {
			return nil, fmt.Errorf("truncated entry %d: %w", i, ErrMalformedManifest)
		}
		index := binary.LittleEndian.Uint32(body[offset:])
		offset += 4
		name, n, err := readString(body[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		fragmentDigest, n, err := readString(body[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		if offset+4 > len(body) {
			return nil, fmt.Errorf("truncated entry %d: %w", i, ErrMalformedManifest)
		}
		size := binary.LittleEndian.Uint32(body[offset:])
		offset += 4
		entries = append(entries, Entry{
			Index:  index,
			Name:   name,
			Digest: fragmentDigest,
			Size:   size,
		})
	}
	if offset != len(body) {
		return nil, fmt.Errorf("trailing bytes: %w", ErrMalformedManifest)
	}
	m := &Manifest{
		Version:      version,
		Slicer:       kind,
		BlockSize:    blockSize,
		NameLength:   nameLength,
		HashLength:   hashLength,
		OriginalName: originalName,
		OriginalSize: originalSize,
		SourceSum:    sourceSum,
		Entries:      entries,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, v string) []byte {
	if len(v) > int(^uint32(0)) {
		panic("keyfile: string too large")
	}
	buf = appendU32(buf, uint32(len(v)))
	return append(buf, v...)
}

func readString(data []byte) (string, int, error) {
	if len(data) < 4 {
		return "", 0, fmt.Errorf("truncated string length: %w", ErrMalformedManifest)
	}
	n := int(binary.LittleEndian.Uint32(data[:4]))
	if n < 0 || len(data) < 4+n {
		return "", 0, fmt.Errorf("truncated string: %w", ErrMalformedManifest)
	}
	return string(data[4 : 4+n]), 4 + n, nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package keyfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/kk-code-lab/jigsaw/internal/slicer"
)

func sampleManifest() *Manifest {
	return &Manifest{
		Version:      VersionV1,
		Slicer:       slicer.KindEven,
		BlockSize:    4,
		NameLength:   8,
		HashLength:   4,
		OriginalName: "report.pdf",
		OriginalSize: 10,
		SourceSum:    blake3.Sum256([]byte("0123456789")),
		Entries: []Entry{
			{Index: 0, Name: "aaaaaaaa", Digest: "0a0b", Size: 4},
			{Index: 1, Name: "bbbbbbbb", Digest: "1c1d", Size: 4},
			{Index: 2, Name: "cccccccc", Digest: "2e2f", Size: 2},
		},
	}
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	c := &BinaryCodec{}
	m := sampleManifest()

	var buf bytes.Buffer
	if err := c.Encode(&buf, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, m)
	}
}

func TestBinaryCodecChecksumMismatch(t *testing.T) {
	c := &BinaryCodec{}
	var buf bytes.Buffer
	if err := c.Encode(&buf, sampleManifest()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xff
	if _, err := c.Decode(bytes.NewReader(data)); !errors.Is(err, ErrMalformedManifest) {
		t.Fatalf("expected ErrMalformedManifest, got %v", err)
	}
}

func TestBinaryCodecUnsupportedVersion(t *testing.T) {
	c := &BinaryCodec{}
	var buf bytes.Buffer
	if err := c.Encode(&buf, sampleManifest()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	// The trailing checksum covers the body only, so flipping the header
	// version exercises the version check rather than the checksum check.
	binary.LittleEndian.PutUint32(data[4:8], 9)
	if _, err := c.Decode(bytes.NewReader(data)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestBinaryCodecTruncated(t *testing.T) {
	c := &BinaryCodec{}
	var buf bytes.Buffer
	if err := c.Encode(&buf, sampleManifest()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	for _, cut := range []int{1, headerLen, len(data) / 2, len(data) - 1} {
		if _, err := c.Decode(bytes.NewReader(data[:cut])); err == nil {
			t.Fatalf("cut at %d: expected error", cut)
		}
	}
}

func TestEncodeRejectsInvalidManifest(t *testing.T) {
	c := &BinaryCodec{}
	cases := []struct {
		name    string
		mutate  func(m *Manifest)
		wantErr error
	}{
		{
			name:    "duplicate index",
			mutate:  func(m *Manifest) { m.Entries[2].Index = 1 },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "index out of range",
			mutate:  func(m *Manifest) { m.Entries[2].Index = 7 },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "size sum mismatch",
			mutate:  func(m *Manifest) { m.OriginalSize = 11 },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "wrong name width",
			mutate:  func(m *Manifest) { m.Entries[0].Name = "short" },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "wrong digest width",
			mutate:  func(m *Manifest) { m.Entries[0].Digest = "toolongdigest" },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "unknown version",
			mutate:  func(m *Manifest) { m.Version = 2 },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unknown slicer",
			mutate:  func(m *Manifest) { m.Slicer = "diagonal" },
			wantErr: ErrMalformedManifest,
		},
		{
			name:    "entry name outside alphabet",
			mutate:  func(m *Manifest) { m.Entries[0].Name = "aaaa.AAA" },
			wantErr: ErrMalformedManifest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := sampleManifest()
			tc.mutate(m)
			var buf bytes.Buffer
			if err := c.Encode(&buf, m); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateRejectsPathSteering(t *testing.T) {
	// Entry names and the original name feed filepath.Join on the decode
	// path. A hostile keyfile must not be able to place separators or dot
	// segments there and write outside the fragment directory.
	t.Run("entry names", func(t *testing.T) {
		for _, name := range []string{"aa/..aaa", `aa\..aaa`, "../aaaaa", "aaaa..aa"} {
			m := sampleManifest()
			m.Entries[1].Name = name
			if err := m.Validate(); !errors.Is(err, ErrMalformedManifest) {
				t.Fatalf("name %q: expected ErrMalformedManifest, got %v", name, err)
			}
		}
	})
	t.Run("original name", func(t *testing.T) {
		for _, name := range []string{"../report.pdf", "/etc/report.pdf", `dir\report.pdf`, "..", "."} {
			m := sampleManifest()
			m.OriginalName = name
			if err := m.Validate(); !errors.Is(err, ErrMalformedManifest) {
				t.Fatalf("original name %q: expected ErrMalformedManifest, got %v", name, err)
			}
		}
	})
}

func TestValidateRejectsHostileDecodedKeyfile(t *testing.T) {
	c := &BinaryCodec{}
	m := sampleManifest()
	var buf bytes.Buffer
	if err := c.Encode(&buf, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Splice the traversal name directly into the encoded bytes and repair
	// the trailing checksum, simulating a keyfile written by another tool.
	data := buf.Bytes()
	hostile := []byte("aa/..aaa")
	i := bytes.Index(data, []byte("bbbbbbbb"))
	if i < 0 {
		t.Fatal("entry name not found in encoded keyfile")
	}
	copy(data[i:], hostile)
	sum := blake3.Sum256(data[headerLen : len(data)-checksumLen])
	copy(data[len(data)-checksumLen:], sum[:])
	if _, err := c.Decode(bytes.NewReader(data)); !errors.Is(err, ErrMalformedManifest) {
		t.Fatalf("expected ErrMalformedManifest, got %v", err)
	}
}

func TestValidateEmptyManifest(t *testing.T) {
	m := &Manifest{
		Version:      VersionV1,
		Slicer:       slicer.KindUneven,
		BlockSize:    16,
		NameLength:   8,
		HashLength:   4,
		OriginalName: "empty.bin",
		OriginalSize: 0,
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("zero-entry manifest should be valid: %v", err)
	}
}

package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRecordAndListRuns(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	id, err := store.RecordRun(ctx, Run{
		Op:           OpEncrypt,
		OriginalName: "report.pdf",
		OriginalSize: 1 << 20,
		Fragments:    50,
		Slicer:       "uneven",
		BlockSize:    20972,
		KeyfilePath:  "/tmp/report.pdf.jgk",
	})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated run id")
	}
	if _, err := store.RecordRun(ctx, Run{
		Op:           OpDecrypt,
		OriginalName: "report.pdf",
		OriginalSize: 1 << 20,
		Fragments:    50,
		Slicer:       "uneven",
		BlockSize:    20972,
		KeyfilePath:  "/tmp/report.pdf.jgk",
		CreatedAt:    "2026-08-26T10:00:00.000000001Z",
	}); err != nil {
		t.Fatalf("RecordRun decrypt: %v", err)
	}

	runs, err := store.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	seen := map[Op]bool{}
	for _, r := range runs {
		seen[r.Op] = true
		if r.CreatedAt == "" {
			t.Fatalf("run %s missing created_at", r.ID)
		}
	}
	if !seen[OpEncrypt] || !seen[OpDecrypt] {
		t.Fatalf("missing ops in listing: %+v", runs)
	}

	limited, err := store.Runs(ctx, 1)
	if err != nil {
		t.Fatalf("Runs limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 run with limit, got %d", len(limited))
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

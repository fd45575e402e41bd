package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	ts := time.Now().Add(-age)
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestPruneMirrorsKeepsCurrentAndRecentFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "pkaprep-20200101T000000.log")
	recent := filepath.Join(dir, "pkaprep-20260101T000000.log")
	current := filepath.Join(dir, "pkaprep-20190101T000000.log")
	unrelated := filepath.Join(dir, "notes.log")
	writeAged(t, old, 10*24*time.Hour)
	writeAged(t, recent, time.Hour)
	writeAged(t, current, 30*24*time.Hour)
	writeAged(t, unrelated, 30*24*time.Hour)

	removed := pruneMirrors(NewNop(), dir, current, 7, time.Now())
	if removed != 1 {
		t.Fatalf("expected 1 file pruned, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old mirror pruned, stat err=%v", err)
	}
	for _, kept := range []string{recent, current, unrelated} {
		if _, err := os.Stat(kept); err != nil {
			t.Fatalf("expected %s to be kept: %v", kept, err)
		}
	}
}

func TestPruneMirrorsDisabled(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "pkaprep-20200101T000000.log")
	writeAged(t, old, 365*24*time.Hour)

	if removed := pruneMirrors(NewNop(), dir, "", 0, time.Now()); removed != 0 {
		t.Fatalf("expected nothing pruned with retention 0, got %d", removed)
	}
	if _, err := os.Stat(old); err != nil {
		t.Fatalf("expected file kept: %v", err)
	}
}

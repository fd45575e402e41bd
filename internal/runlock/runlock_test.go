package runlock_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkaprep/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "pkaprep.lock")

	first, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if first.Path() != path {
		t.Fatalf("unexpected path %q", first.Path())
	}

	_, err = runlock.Acquire(path)
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "pid") {
		t.Fatalf("expected holder pid in error, got %v", err)
	}

	held, err := runlock.Held(path)
	if err != nil || !held {
		t.Fatalf("expected lock to be held, held=%v err=%v", held, err)
	}
	if pid, ok := runlock.HolderPID(path); !ok || pid != os.Getpid() {
		t.Fatalf("unexpected holder pid %d ok=%v", pid, ok)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}

	second, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("expected lock to be reacquired: %v", err)
	}
	defer second.Release()
}

func TestHeldWithoutLockFile(t *testing.T) {
	held, err := runlock.Held(filepath.Join(t.TempDir(), "missing.lock"))
	if err != nil || held {
		t.Fatalf("expected free lock, held=%v err=%v", held, err)
	}
}

func TestReleaseNil(t *testing.T) {
	var lock *runlock.Lock
	if err := lock.Release(); err != nil {
		t.Fatalf("expected nil release to succeed: %v", err)
	}
}

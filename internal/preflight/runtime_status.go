package preflight

import (
	"context"
	"fmt"
	"os"

	"pkaprep/internal/history"
	"pkaprep/internal/runlock"
)

// CheckRunLock reports whether another run currently holds the lock. A held
// lock is informational: it clears when that run ends.
func CheckRunLock(path string) Result {
	const name = "Run lock"
	held, err := runlock.Held(path)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	if !held {
		return Result{Name: name, Passed: true, Optional: true, Detail: "free"}
	}
	if pid, ok := runlock.HolderPID(path); ok {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("held by pid %d", pid)}
	}
	return Result{Name: name, Optional: true, Detail: "held by another process"}
}

// CheckHistory opens the history ledger when it exists and reports how many
// invocations it holds. A missing database is fine; the first run creates it.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "History"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s (created on first run)", path)}
	}
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	defer store.Close()
	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s (%d invocations)", path, count)}
}

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// pruneMirrors deletes mirrored log files in dir whose modification time is
// more than retentionDays old. current is the file this process writes and is
// never removed. It returns the number of files deleted.
func pruneMirrors(logger *slog.Logger, dir, current string, retentionDays int, now time.Time) int {
	if retentionDays <= 0 {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, MirrorPattern))
	if err != nil {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)

	removed := 0
	for _, path := range matches {
		if path == current {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on the state directory"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		logger.Debug("log pruned",
			String("path", path),
			String(FieldEventType, "log_pruned"),
		)
	}
	if removed > 0 {
		logger.Info("old log files pruned",
			Int("count", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "logs_pruned"),
		)
	}
	return removed
}

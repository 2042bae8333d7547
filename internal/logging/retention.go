package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs removes files in dir matching pattern whose modification time
// is older than retentionDays. The paths in keep are never removed. A
// retentionDays value of 0 disables pruning. The number of removed files is
// returned.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, dir, pattern string, keep ...string) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	exclusions := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		if abs, err := filepath.Abs(strings.TrimSpace(path)); err == nil {
			exclusions[abs] = struct{}{}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pattern != "" {
			if matched, err := filepath.Match(pattern, name); err != nil || !matched {
				continue
			}
		}
		fullPath := filepath.Join(dir, name)
		if abs, err := filepath.Abs(fullPath); err == nil {
			fullPath = abs
		}
		if _, skip := exclusions[fullPath]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			Warn(logger, "log_retention_failed", "check file permissions and log_dir ownership",
				"log retention remove failed; file remains",
				String(FieldPath, fullPath),
				Error(err),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Info("log pruned",
				String(FieldPath, fullPath),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LogFileSettings come from the environment: file logging is on by default
// and writes timestamped files under LOG_DIR.
type LogFileSettings struct {
	Enabled  bool
	Dir      string
	MaxFiles int
}

// LoadLogFileSettings reads the log-file environment switches.
func LoadLogFileSettings() LogFileSettings {
	return LogFileSettings{
		Enabled:  getEnv("LOG_FILE_ENABLED", "true") == "true",
		Dir:      getEnv("LOG_DIR", "logs"),
		MaxFiles: 5,
	}
}

// SetupLogFile creates a new timestamped log file under dir and prunes old
// ones so at most maxFiles remain. The caller owns closing the returned file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("server-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneOldLogs(dir, maxFiles); err != nil {
		// Pruning failure must not take logging down with it
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneOldLogs removes the oldest server-*.log files beyond maxFiles. The
// timestamp in the filename makes lexicographic order chronological.
func pruneOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}

// Package debuglog writes timestamped diagnostic lines to a file when
// KATSEARCH_DEBUG=1 (or the equivalent config switch) is set.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	envEnabled = "KATSEARCH_DEBUG"
	envFile    = "KATSEARCH_DEBUG_FILE"
)

var (
	mu      sync.Mutex
	enabled = os.Getenv(envEnabled) == "1"
	path    = defaultPath()
)

func defaultPath() string {
	if p := os.Getenv(envFile); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "katsearch-debug.log")
}

// Configure overrides the environment defaults. An empty file keeps the
// current destination.
func Configure(on bool, file string) {
	mu.Lock()
	defer mu.Unlock()
	enabled = on
	if file != "" {
		path = file
	}
}

// Enabled reports whether debug output is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Logf appends one line to the debug file. Failures to write are ignored.
func Logf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	timestamp := time.Now().Format(time.RFC3339Nano)
	_, _ = fmt.Fprintf(f, "%s "+format+"\n", append([]interface{}{timestamp}, args...)...)
	_ = f.Close()
}

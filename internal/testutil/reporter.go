package testutil

import (
	"fmt"
	"sync"
)

// CaptureReporter records console lines for assertions.
type CaptureReporter struct {
	mu    sync.Mutex
	lines []string
}

func (r *CaptureReporter) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of everything printed so far.
func (r *CaptureReporter) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

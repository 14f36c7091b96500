package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CallEvent records one inference call. Elapsed wall-clock time is an
// observability side effect, not a correctness input.
type CallEvent struct {
	Timestamp    string `json:"ts"`
	RunKey       string `json:"run"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	ElapsedMS    int64  `json:"elapsed_ms"`
	InputTokens  int    `json:"in,omitempty"`
	OutputTokens int    `json:"out,omitempty"`
	Outcome      string `json:"outcome"` // "ok" or the failure category
}

// Tracker appends call events to a JSONL file.
type Tracker struct {
	filePath string
	mu       sync.Mutex
}

// NewTracker creates a tracker that writes to <dir>/metrics/calls.jsonl.
func NewTracker(dir string) *Tracker {
	metricsDir := filepath.Join(dir, "metrics")
	os.MkdirAll(metricsDir, 0755)
	return &Tracker{
		filePath: filepath.Join(metricsDir, "calls.jsonl"),
	}
}

// Record appends a call event. Recording failures are swallowed: metrics
// must never fail a run.
func (t *Tracker) Record(event CallEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(time.RFC3339)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	f.Write(data)
	f.Write([]byte("\n"))
}

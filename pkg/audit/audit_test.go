package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewRunKey_SameSecondDiffers(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	a := NewRunKey(now)
	b := NewRunKey(now)
	if a == b {
		t.Errorf("two run keys from the same instant collide: %s", a)
	}
	if !strings.HasPrefix(a, "20260825-120000-") {
		t.Errorf("unexpected key format: %s", a)
	}
}

func TestWrite_PersistsTrio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := NewLogger(dir, zap.NewNop())

	rec := &Record{
		Key:      "20260825-120000-abcd1234",
		Request:  []byte(`{"model":"m","messages":[]}`),
		Response: []byte(`{"choices":[]}`),
		Result:   "Hello World",
	}
	if err := l.Write(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, suffix := range []string{".request.json", ".response.json", ".response.md"} {
		if _, err := os.Stat(filepath.Join(dir, rec.Key+suffix)); err != nil {
			t.Errorf("missing artifact %s: %v", suffix, err)
		}
	}

	text, err := os.ReadFile(l.ResultPath(rec.Key))
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "Hello World" {
		t.Errorf("result artifact holds %q", text)
	}
}

func TestWrite_PartialRecordGetsPlaceholders(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, zap.NewNop())

	rec := &Record{
		Key:     "20260825-120001-ffff0000",
		Request: []byte(`{"model":"m"}`),
		// No response: the run failed before one arrived.
	}
	if err := l.Write(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := os.ReadFile(filepath.Join(dir, rec.Key+".response.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(resp), "no response") {
		t.Errorf("expected placeholder response document, got %s", resp)
	}

	result, err := os.ReadFile(l.ResultPath(rec.Key))
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != NoContentMarker {
		t.Errorf("expected no-content marker, got %q", result)
	}
}

func TestWrite_RequiresKey(t *testing.T) {
	l := NewLogger(t.TempDir(), zap.NewNop())
	if err := l.Write(&Record{}); err == nil {
		t.Error("expected error for record without a key")
	}
}

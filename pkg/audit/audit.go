// Package audit persists the per-run forensic trail: the redacted request,
// the raw service response, and the extracted text. Records are written
// once and never mutated. The raw image payload and the credential must
// never appear in any artifact; redaction happens before a record reaches
// this package, and nothing here reads the image or the environment.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoContentMarker is written to the result artifact when the service
// returned a success without usable content.
const NoContentMarker = "_No content returned by the model._"

// Record is one run's worth of artifacts.
type Record struct {
	Key      string // run key, names all three files
	Request  []byte // redacted request body
	Response []byte // raw response body, or a synthesized error document
	Result   string // extracted text or an explicit failure marker
}

// Logger writes records under a fixed directory.
type Logger struct {
	dir string
	log *zap.Logger
}

func NewLogger(dir string, log *zap.Logger) *Logger {
	return &Logger{dir: dir, log: log}
}

// NewRunKey returns a timestamp-keyed identifier with a uniqueness suffix,
// so two runs starting within the same second cannot collide.
func NewRunKey(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return now.Format("20060102-150405") + "-" + suffix
}

// Write persists the record's three artifacts. It tolerates partial
// records from failed runs: a missing response becomes an explicit
// placeholder document rather than a missing file.
func (l *Logger) Write(rec *Record) error {
	if rec.Key == "" {
		return fmt.Errorf("audit record has no run key")
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("creating audit dir %s: %w", l.dir, err)
	}

	request := rec.Request
	if len(request) == 0 {
		request = []byte(`{"note":"request was not constructed"}`)
	}
	response := rec.Response
	if len(response) == 0 {
		response = []byte(`{"note":"no response was received"}`)
	}
	result := rec.Result
	if result == "" {
		result = NoContentMarker
	}

	files := map[string][]byte{
		rec.Key + ".request.json":  request,
		rec.Key + ".response.json": response,
		rec.Key + ".response.md":   []byte(result),
	}
	for name, data := range files {
		path := filepath.Join(l.dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	l.log.Info("audit record written",
		zap.String("key", rec.Key),
		zap.String("dir", l.dir))
	return nil
}

// ResultPath returns where the extracted-text artifact for a key lives.
func (l *Logger) ResultPath(key string) string {
	return filepath.Join(l.dir, key+".response.md")
}

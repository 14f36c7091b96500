package envcheck

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/octoscan/pixtract/pkg/config"
)

func usableConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Provider:     "openai",
		APIKey:       "test-key",
		BaseURL:      "http://127.0.0.1:1/v1",
		Model:        "gpt-4o-mini",
		Timeout:      time.Second,
		AuditDir:     filepath.Join(t.TempDir(), "logs"),
		MaxDimension: 1024,
	}
}

func TestCheck_AllSatisfied(t *testing.T) {
	r := Check(usableConfig(t))
	if !r.OK() {
		t.Errorf("expected clean report, got:\n%s", r.Summary())
	}
}

func TestCheck_MissingCredential(t *testing.T) {
	cfg := usableConfig(t)
	cfg.APIKey = ""

	r := Check(cfg)
	if r.OK() {
		t.Fatal("expected a missing-credential report")
	}
	if !strings.Contains(r.Summary(), "PIXTRACT_API_KEY") {
		t.Errorf("report does not name the credential variable:\n%s", r.Summary())
	}
}

func TestCheck_AnthropicCredentialSelected(t *testing.T) {
	cfg := usableConfig(t)
	cfg.Provider = "anthropic"
	cfg.APIKey = "irrelevant"
	cfg.AnthropicAPIKey = ""

	r := Check(cfg)
	if r.OK() {
		t.Fatal("expected a missing-credential report")
	}
	if !strings.Contains(r.Summary(), "PIXTRACT_ANTHROPIC_API_KEY") {
		t.Errorf("report names the wrong variable:\n%s", r.Summary())
	}
}

func TestCheck_AccumulatesAllProblems(t *testing.T) {
	cfg := usableConfig(t)
	cfg.Provider = "carrier-pigeon"
	cfg.APIKey = ""
	cfg.AuditDir = "/nonexistent/deeply/nested/logs"

	r := Check(cfg)
	if len(r.Missing) < 3 {
		t.Errorf("expected every problem reported in one pass, got %d:\n%s",
			len(r.Missing), r.Summary())
	}
}

func TestCheck_FallbackCredential(t *testing.T) {
	cfg := usableConfig(t)
	cfg.FallbackProvider = "anthropic"

	r := Check(cfg)
	if r.OK() {
		t.Fatal("expected report for missing fallback credential")
	}
	if !strings.Contains(r.Summary(), "fallback") {
		t.Errorf("report does not mention the fallback:\n%s", r.Summary())
	}
}

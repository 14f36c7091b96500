// Package envcheck validates the runtime environment before the pipeline
// touches the filesystem or the network. It is a read-only probe: every
// problem is accumulated into one report so the caller fixes everything
// in a single iteration instead of replaying the pipeline per failure.
package envcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/octoscan/pixtract/pkg/config"
	"github.com/octoscan/pixtract/pkg/imaging"
)

// Missing describes one unsatisfied requirement.
type Missing struct {
	Kind string // "credential", "capability", "workspace", "configuration"
	Name string
	Hint string
}

// Report is the outcome of a Check. Empty means the environment is usable.
type Report struct {
	Missing []Missing
}

// OK reports whether every requirement was satisfied.
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Summary renders the report as one human-readable line per problem.
func (r Report) Summary() string {
	lines := make([]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		lines = append(lines, fmt.Sprintf("%s %s: %s", m.Kind, m.Name, m.Hint))
	}
	return strings.Join(lines, "\n")
}

var knownProviders = map[string]bool{"openai": true, "anthropic": true}

// Check probes credentials, decoder capabilities, and the audit location.
// It creates nothing and runs before any temporary resource exists.
func Check(cfg *config.Config) Report {
	var r Report

	if !knownProviders[cfg.Provider] {
		r.Missing = append(r.Missing, Missing{
			Kind: "configuration",
			Name: "PIXTRACT_PROVIDER",
			Hint: fmt.Sprintf("unknown provider %q (expected openai or anthropic)", cfg.Provider),
		})
	}

	if cfg.Credential() == "" {
		r.Missing = append(r.Missing, Missing{
			Kind: "credential",
			Name: cfg.CredentialVar(),
			Hint: "set it to the bearer token for the inference service",
		})
	}
	if cfg.FallbackProvider == "anthropic" && cfg.AnthropicAPIKey == "" {
		r.Missing = append(r.Missing, Missing{
			Kind: "credential",
			Name: "PIXTRACT_ANTHROPIC_API_KEY",
			Hint: "required by the configured fallback provider",
		})
	}
	if cfg.FallbackProvider == "openai" && cfg.APIKey == "" {
		r.Missing = append(r.Missing, Missing{
			Kind: "credential",
			Name: "PIXTRACT_API_KEY",
			Hint: "required by the configured fallback provider",
		})
	}

	for _, ext := range imaging.Extensions() {
		if _, ok := imaging.DecoderFor(ext); !ok {
			r.Missing = append(r.Missing, Missing{
				Kind: "capability",
				Name: "decoder " + ext,
				Hint: "this build cannot decode an allow-listed format",
			})
		}
	}

	if m, ok := probeAuditDir(cfg.AuditDir); !ok {
		r.Missing = append(r.Missing, m)
	}

	return r
}

// probeAuditDir verifies the audit directory (or its parent, when it does
// not exist yet) is a writable directory, without creating anything.
func probeAuditDir(dir string) (Missing, bool) {
	target := dir
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		target = filepath.Dir(dir)
		info, err = os.Stat(target)
	}
	if err != nil {
		return Missing{
			Kind: "workspace",
			Name: "PIXTRACT_AUDIT_DIR",
			Hint: fmt.Sprintf("%s is not usable: %v", dir, err),
		}, false
	}
	if !info.IsDir() {
		return Missing{
			Kind: "workspace",
			Name: "PIXTRACT_AUDIT_DIR",
			Hint: fmt.Sprintf("%s is not a directory", target),
		}, false
	}
	if info.Mode().Perm()&0200 == 0 {
		return Missing{
			Kind: "workspace",
			Name: "PIXTRACT_AUDIT_DIR",
			Hint: fmt.Sprintf("%s is not writable", target),
		}, false
	}
	return Missing{}, true
}

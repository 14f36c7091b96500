// Package pipeline runs one extraction end to end: environment check,
// image inspection, normalization, request construction, the inference
// call, and the audit record. Every stage fails closed; only the audit
// logger runs after a failure, so failed runs still leave a trail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/octoscan/pixtract/pkg/audit"
	"github.com/octoscan/pixtract/pkg/config"
	"github.com/octoscan/pixtract/pkg/envcheck"
	"github.com/octoscan/pixtract/pkg/imaging"
	"github.com/octoscan/pixtract/pkg/metrics"
	"github.com/octoscan/pixtract/pkg/providers"
)

// Outcome is a successful invocation's result.
type Outcome struct {
	RunKey     string
	Text       string
	ResultPath string
}

// Pipeline wires one provider, one audit location, and one configuration.
type Pipeline struct {
	cfg      *config.Config
	log      *zap.Logger
	provider providers.Provider
}

// New builds a pipeline for the configured provider. No filesystem or
// network side effects happen here.
func New(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	provider, err := buildProvider(cfg, cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackProvider != "" {
		fb, err := buildProvider(cfg, cfg.FallbackProvider)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		provider = providers.NewFallbackProvider(provider, fb, cfg.FallbackModel, log)
	}
	return &Pipeline{cfg: cfg, log: log, provider: provider}, nil
}

func buildProvider(cfg *config.Config, name string) (providers.Provider, error) {
	switch name {
	case "openai":
		return providers.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case "anthropic":
		return providers.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

// Run executes the pipeline for one image. The temporary normalized
// image, if one is created, is removed on every exit path, including
// cancellation mid-call.
func (p *Pipeline) Run(ctx context.Context, imagePath string) (*Outcome, error) {
	// Read-only environment probe; runs before any file or network I/O.
	if report := envcheck.Check(p.cfg); !report.OK() {
		return nil, fail(KindEnvironment, errors.New(report.Summary()))
	}

	asset, err := imaging.Inspect(imagePath)
	if err != nil {
		return nil, fail(KindValidation, err)
	}
	p.log.Info("image inspected",
		zap.String("path", asset.Path),
		zap.String("media_type", asset.MediaType),
		zap.Int("width", asset.Width),
		zap.Int("height", asset.Height))

	normalized, err := imaging.Normalize(asset, p.cfg.MaxDimension)
	if err != nil {
		return nil, fail(KindNormalization, err)
	}
	defer normalized.Cleanup()
	if normalized.Temp {
		p.log.Info("image normalized",
			zap.String("temp", normalized.Path),
			zap.Int("width", normalized.Width),
			zap.Int("height", normalized.Height))
	}

	imageData, err := normalized.ReadBase64()
	if err != nil {
		return nil, fail(KindNormalization, err)
	}

	model := p.cfg.Model
	if model == "" {
		model = p.provider.DefaultModel()
	}
	req := providers.Request{
		Model:     model,
		Prompt:    providers.ExtractionPrompt,
		MediaType: normalized.MediaType,
		ImageData: imageData,
	}
	payload, err := p.provider.BuildRequest(req)
	if err != nil {
		return nil, classifyProviderErr(err)
	}

	runKey := audit.NewRunKey(time.Now())
	auditor := audit.NewLogger(p.cfg.AuditDir, p.log)
	tracker := metrics.NewTracker(p.cfg.AuditDir)

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if !p.cfg.SkipProbe {
		if err := p.provider.Probe(callCtx, model); err != nil {
			perr := classifyProviderErr(err)
			p.writeAudit(auditor, runKey, payload, nil, failureResult(perr))
			return nil, perr
		}
	}

	start := time.Now()
	resp, err := p.provider.Extract(callCtx, payload)
	elapsed := time.Since(start)
	if err != nil {
		perr := classifyProviderErr(err)
		tracker.Record(metrics.CallEvent{
			RunKey:    runKey,
			Provider:  p.provider.Name(),
			Model:     model,
			ElapsedMS: elapsed.Milliseconds(),
			Outcome:   perr.Kind.String(),
		})
		p.writeAudit(auditor, runKey, payload, rawResponseOf(err), failureResult(perr))
		return nil, perr
	}

	tracker.Record(metrics.CallEvent{
		RunKey:       runKey,
		Provider:     p.provider.Name(),
		Model:        resp.Model,
		ElapsedMS:    resp.Elapsed.Milliseconds(),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Outcome:      "ok",
	})
	p.log.Info("extraction complete",
		zap.String("model", resp.Model),
		zap.Duration("elapsed", resp.Elapsed),
		zap.Int("chars", len(resp.Text)))

	p.writeAudit(auditor, runKey, payload, resp.Raw, resp.Text)

	return &Outcome{
		RunKey:     runKey,
		Text:       resp.Text,
		ResultPath: auditor.ResultPath(runKey),
	}, nil
}

// writeAudit persists the forensic record. It is exempt from fail-closed:
// an audit failure is logged, never propagated over the primary outcome.
func (p *Pipeline) writeAudit(auditor *audit.Logger, runKey string, payload *providers.Payload, rawResponse []byte, result string) {
	redacted, err := payload.Redacted()
	if err != nil {
		p.log.Error("redacting request for audit", zap.Error(err))
		redacted = []byte(`{"note":"request redaction failed"}`)
	}
	rec := &audit.Record{
		Key:      runKey,
		Request:  redacted,
		Response: rawResponse,
		Result:   result,
	}
	if err := auditor.Write(rec); err != nil {
		p.log.Error("writing audit record", zap.Error(err))
	}
}

// rawResponseOf recovers the raw service response carried by a failure,
// when there is one.
func rawResponseOf(err error) []byte {
	var respErr *providers.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Raw
	}
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return []byte(apiErr.Body)
	}
	return nil
}

// failureResult renders the result artifact for a failed run. A success
// status with no content gets the explicit no-content marker; everything
// else records what failed.
func failureResult(perr *Error) string {
	if perr.Kind == KindResponse {
		return audit.NoContentMarker
	}
	return fmt.Sprintf("_Extraction failed (%s)._\n\n%s\n", perr.Kind, perr.Err.Error())
}

package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FallbackProvider wraps a primary and a fallback Provider. When the
// primary's extraction fails, it rebuilds the request for the fallback
// backend and retries there. This is an opt-in hardening knob; the
// default pipeline runs without it.
type FallbackProvider struct {
	primary       Provider
	fallback      Provider
	fallbackModel string
	log           *zap.Logger
}

func NewFallbackProvider(primary, fallback Provider, fallbackModel string, log *zap.Logger) *FallbackProvider {
	if fallbackModel == "" {
		fallbackModel = fallback.DefaultModel()
	}
	return &FallbackProvider{
		primary:       primary,
		fallback:      fallback,
		fallbackModel: fallbackModel,
		log:           log,
	}
}

func (p *FallbackProvider) Name() string {
	return fmt.Sprintf("%s+%s", p.primary.Name(), p.fallback.Name())
}

func (p *FallbackProvider) DefaultModel() string { return p.primary.DefaultModel() }

func (p *FallbackProvider) BuildRequest(req Request) (*Payload, error) {
	return p.primary.BuildRequest(req)
}

func (p *FallbackProvider) Probe(ctx context.Context, model string) error {
	return p.primary.Probe(ctx, model)
}

func (p *FallbackProvider) Extract(ctx context.Context, payload *Payload) (*Response, error) {
	resp, err := p.primary.Extract(ctx, payload)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	p.log.Warn("primary provider failed, retrying with fallback",
		zap.String("primary", p.primary.Name()),
		zap.String("fallback", p.fallback.Name()),
		zap.String("fallback_model", p.fallbackModel),
		zap.Error(err))

	req := payload.Req
	req.Model = p.fallbackModel
	fbPayload, fbErr := p.fallback.BuildRequest(req)
	if fbErr != nil {
		return nil, fmt.Errorf("primary failed: %w; building fallback request also failed: %v", err, fbErr)
	}
	fbResp, fbErr := p.fallback.Extract(ctx, fbPayload)
	if fbErr != nil {
		return nil, fmt.Errorf("primary failed: %w; fallback also failed: %v", err, fbErr)
	}
	return fbResp, nil
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider talks to the Anthropic Messages API, carrying the
// image as a base64 source block.
type AnthropicProvider struct {
	client *anthropic.Client
}

func NewAnthropicProvider(apiKey string, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{client: &client}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) DefaultModel() string { return "claude-sonnet-4-5-20250929" }

func (p *AnthropicProvider) BuildRequest(req Request) (*Payload, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(req.Prompt),
				anthropic.NewImageBlockBase64(req.MediaType, req.ImageData),
			),
		},
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, &SerializationError{Reason: fmt.Sprintf("marshaling message params: %v", err)}
	}

	payload := &Payload{Req: req, Body: body, params: params}
	if err := payload.validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func (p *AnthropicProvider) Probe(ctx context.Context, model string) error {
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return classifyAnthropicErr(err)
	}

	var available []string
	for _, m := range page.Data {
		if m.ID == model {
			return nil
		}
		available = append(available, m.ID)
	}
	return &APIError{
		Message:      fmt.Sprintf("model %q is not served", model),
		Alternatives: available,
	}
}

func (p *AnthropicProvider) Extract(ctx context.Context, payload *Payload) (*Response, error) {
	params, ok := payload.params.(anthropic.MessageNewParams)
	if !ok {
		return nil, &SerializationError{Reason: "payload was not built by the anthropic provider"}
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, classifyAnthropicErr(err)
	}

	raw := []byte(msg.RawJSON())
	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.AsText().Text
		}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ResponseError{Reason: "message carried no text content", Raw: raw, Elapsed: elapsed}
	}

	return &Response{
		Text:         content,
		Raw:          raw,
		Model:        string(msg.Model),
		Elapsed:      elapsed,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func classifyAnthropicErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &APIError{
			Status:  apierr.StatusCode,
			Body:    apierr.RawJSON(),
			Message: apierr.Error(),
		}
	}
	return &NetworkError{Err: err}
}

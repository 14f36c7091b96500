package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint.
// This is the primary wire contract: one user message carrying a text part
// and an inline data-URL image part.
type OpenAIProvider struct {
	client  openai.Client
	baseURL string
}

func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// The SDK retries by default; this pipeline never retries on its
		// own, failures surface immediately.
		option.WithMaxRetries(0),
	)
	return &OpenAIProvider{client: client, baseURL: baseURL}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) DefaultModel() string { return "gpt-4o-mini" }

func (p *OpenAIProvider) BuildRequest(req Request) (*Payload, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: fmt.Sprintf("data:%s;base64,%s", req.MediaType, req.ImageData),
				}),
			}),
		},
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, &SerializationError{Reason: fmt.Sprintf("marshaling chat completion params: %v", err)}
	}

	payload := &Payload{Req: req, Body: body, params: params}
	if err := payload.validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func (p *OpenAIProvider) Probe(ctx context.Context, model string) error {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return classifyOpenAIErr(err)
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

func (p *OpenAIProvider) Extract(ctx context.Context, payload *Payload) (*Response, error) {
	params, ok := payload.params.(openai.ChatCompletionNewParams)
	if !ok {
		return nil, &SerializationError{Reason: "payload was not built by the openai provider"}
	}

	start := time.Now()
	completion, err := p.client.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, classifyOpenAIErr(err)
	}

	raw := []byte(completion.RawJSON())
	if len(completion.Choices) == 0 {
		return nil, &ResponseError{Reason: "response carried no choices", Raw: raw, Elapsed: elapsed}
	}
	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, &ResponseError{Reason: "response content was empty", Raw: raw, Elapsed: elapsed}
	}

	return &Response{
		Text:         text,
		Raw:          raw,
		Model:        completion.Model,
		Elapsed:      elapsed,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}, nil
}

// classifyOpenAIErr separates "service answered with a failure" from
// "service was never reached".
func classifyOpenAIErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &APIError{
			Status:  apierr.StatusCode,
			Body:    apierr.RawJSON(),
			Message: apierr.Error(),
		}
	}
	return &NetworkError{Err: err}
}

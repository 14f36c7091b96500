package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExtractionPrompt is the fixed instruction sent with every image.
const ExtractionPrompt = "Extract all text visible in this image. " +
	"Output only the extracted text, preserving the original line breaks. " +
	"Do not add commentary or formatting of your own."

// Request is the provider-neutral description of one extraction call.
type Request struct {
	Model     string
	Prompt    string
	MediaType string // MIME type of the image, e.g. "image/png"
	ImageData string // base64-encoded image bytes
}

// Payload is a built, serialized request body ready to send. Body is the
// exact JSON the provider will transmit; params holds the typed SDK
// parameters it was rendered from.
type Payload struct {
	Req  Request
	Body []byte

	params any
}

// Redacted returns the request body with the image payload replaced by a
// placeholder, safe for durable logging.
func (p *Payload) Redacted() ([]byte, error) {
	return redactBody(p.Body)
}

// validate re-parses the body and confirms the model field survived
// serialization. A failure here is an internal invariant violation.
func (p *Payload) validate() error {
	var m map[string]any
	if err := json.Unmarshal(p.Body, &m); err != nil {
		return &SerializationError{Reason: fmt.Sprintf("request body is not valid JSON: %v", err)}
	}
	if model, _ := m["model"].(string); model != p.Req.Model {
		return &SerializationError{Reason: fmt.Sprintf("request body carries model %q, want %q", m["model"], p.Req.Model)}
	}
	return nil
}

// Response is a successful extraction result.
type Response struct {
	Text         string
	Raw          []byte // raw service response body
	Model        string
	Elapsed      time.Duration
	InputTokens  int
	OutputTokens int
}

// Provider abstracts one inference backend.
type Provider interface {
	Name() string
	DefaultModel() string

	// BuildRequest assembles and serializes the request body.
	BuildRequest(req Request) (*Payload, error)

	// Probe confirms the model is currently served; when it is not, the
	// returned APIError carries the served alternatives.
	Probe(ctx context.Context, model string) error

	// Extract performs the inference call.
	Extract(ctx context.Context, p *Payload) (*Response, error)
}

// SerializationError is an internal invariant violation: the builder
// produced output that does not parse back as expected.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string {
	return "request serialization: " + e.Reason
}

// NetworkError is a transport-level failure: the service was never
// usefully reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a failure reported by the service itself, including a
// requested model that is not served.
type APIError struct {
	Status       int
	Body         string
	Message      string
	Alternatives []string // served models, when the requested one is absent
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("service returned status %d", e.Status)
	}
	if len(e.Alternatives) > 0 {
		msg += "; available models: " + strings.Join(e.Alternatives, ", ")
	}
	return "api: " + msg
}

// ResponseError is a success status with no usable content, which is a
// reportable failure, never a degenerate success.
type ResponseError struct {
	Reason  string
	Raw     []byte
	Elapsed time.Duration
}

func (e *ResponseError) Error() string {
	return "response: " + e.Reason
}

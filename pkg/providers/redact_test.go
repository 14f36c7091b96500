package providers

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRedactBody_OpenAIDataURL(t *testing.T) {
	body := []byte(`{"model":"m","messages":[{"role":"user","content":[` +
		`{"type":"text","text":"read this"},` +
		`{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAABBBBCCCC"}}]}]}`)

	out, err := redactBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "AAAABBBBCCCC") {
		t.Error("image payload survived redaction")
	}
	if !strings.Contains(string(out), redactedPlaceholder) {
		t.Error("placeholder missing from redacted body")
	}
	if !strings.Contains(string(out), "read this") {
		t.Error("prompt text should survive redaction")
	}
}

func TestRedactBody_AnthropicBase64Source(t *testing.T) {
	body := []byte(`{"model":"m","messages":[{"role":"user","content":[` +
		`{"type":"image","source":{"type":"base64","media_type":"image/jpeg","data":"ZZZZYYYY"}}]}]}`)

	out, err := redactBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "ZZZZYYYY") {
		t.Error("image payload survived redaction")
	}
	if !strings.Contains(string(out), `"media_type":"image/jpeg"`) {
		t.Error("media type should survive redaction")
	}
}

func TestRedactBody_PlainURLUntouched(t *testing.T) {
	body := []byte(`{"url":"https://example.com/a.png","data":"unrelated"}`)

	out, err := redactBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("redacted body is not valid JSON: %v", err)
	}
	if m["url"] != "https://example.com/a.png" {
		t.Errorf("remote URL was redacted: %v", m["url"])
	}
	if m["data"] != "unrelated" {
		t.Errorf("non-base64 data field was redacted: %v", m["data"])
	}
}

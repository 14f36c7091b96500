package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// redactedPlaceholder replaces inline image payloads in audit copies.
const redactedPlaceholder = "[image payload redacted]"

// redactBody rewrites a serialized request so that no inline image data
// survives: data URLs (OpenAI image_url parts) and base64 source blocks
// (Anthropic image blocks) are replaced with a placeholder. The walk is
// structural, so it holds for any message shape either SDK emits.
func redactBody(body []byte) ([]byte, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("parsing request body for redaction: %w", err)
	}
	redactValue(root)
	out, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("re-serializing redacted request: %w", err)
	}
	return out, nil
}

func redactValue(v any) {
	switch node := v.(type) {
	case map[string]any:
		for key, val := range node {
			if s, ok := val.(string); ok && isImagePayload(node, key, s) {
				node[key] = redactedPlaceholder
				continue
			}
			redactValue(val)
		}
	case []any:
		for _, item := range node {
			redactValue(item)
		}
	}
}

// isImagePayload identifies the two inline-image encodings on the wire:
// a "url" holding a data URL, or a "data" field inside a base64 source.
func isImagePayload(parent map[string]any, key, value string) bool {
	switch key {
	case "url":
		return strings.HasPrefix(value, "data:")
	case "data":
		typ, _ := parent["type"].(string)
		return typ == "base64"
	}
	return false
}

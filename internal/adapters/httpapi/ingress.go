package httpapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bnema/tabbridge/internal/domain"
)

// maxContentDepth bounds recursion into nested content objects. Anything
// deeper keeps its raw JSON rendering.
const maxContentDepth = 8

// chatCompletionRequest is the OpenAI-style ingress shape. Only the fields
// the bridge needs are decoded; everything else is ignored.
type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	ConversationID string        `json:"conversation_id"`
}

type chatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// extractText picks the message to deliver: the newest user message with
// non-blank content wins, then the newest message of any role.
func (r chatCompletionRequest) extractText() (string, error) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if !strings.EqualFold(m.Role, "user") {
			continue
		}
		if text := strings.TrimSpace(flattenContent(m.Content, 0)); text != "" {
			return text, nil
		}
	}
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(flattenContent(r.Messages[i].Content, 0)); text != "" {
			return text, nil
		}
	}

	return "", domain.ErrEmptyMessage
}

// flattenContent reduces any chat-completion content shape to plain text.
// Strings pass through, part arrays are flattened and joined, objects
// prefer their text field and then recurse into nested content. Every
// other shape keeps its compact JSON rendering.
func flattenContent(raw json.RawMessage, depth int) string {
	if len(raw) == 0 {
		return ""
	}
	if depth >= maxContentDepth {
		return compactJSON(raw)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		texts := make([]string, 0, len(parts))
		for _, part := range parts {
			if text := strings.TrimSpace(flattenContent(part, depth+1)); text != "" {
				texts = append(texts, text)
			}
		}
		return strings.Join(texts, "\n")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if textRaw, ok := obj["text"]; ok {
			var text string
			if err := json.Unmarshal(textRaw, &text); err == nil {
				return text
			}
		}
		if nested, ok := obj["content"]; ok {
			return flattenContent(nested, depth+1)
		}
		return compactJSON(raw)
	}

	return compactJSON(raw)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}

	return buf.String()
}

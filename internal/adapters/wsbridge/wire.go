package wsbridge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Peer socket frame types. CLIENT_MESSAGE, CONNECTION_ESTABLISHED and PONG
// are written by the hub; the rest arrive from the extension.
const (
	frameConnectionEstablished = "CONNECTION_ESTABLISHED"
	frameClientMessage         = "CLIENT_MESSAGE"
	frameAIResponse            = "AI_RESPONSE"
	frameError                 = "ERROR"
	framePing                  = "PING"
	framePong                  = "PONG"
)

// frame is the envelope for every message on the peer socket. Fields not
// used by a given type stay empty.
type frame struct {
	Type           string `json:"type"`
	PeerID         string `json:"peerId,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message,omitempty"`
	Response       string `json:"response,omitempty"`
	Error          string `json:"error,omitempty"`
	Timestamp      int64  `json:"timestamp,omitempty"`
}

func parseFrame(data []byte) (frame, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if strings.TrimSpace(f.Type) == "" {
		return frame{}, fmt.Errorf("frame has no type")
	}

	return f, nil
}

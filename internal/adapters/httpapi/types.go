package httpapi

import "time"

// Transport shapes for the caller-facing API. StatusResponse and the
// conversation DTOs are exported so CLI clients can decode them.

type messageRequest struct {
	Text           string `json:"text"`
	PeerID         string `json:"peerId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

type messageResponse struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type StatusResponse struct {
	Version       string       `json:"version"`
	UptimeSeconds int64        `json:"uptimeSeconds"`
	Peers         []PeerStatus `json:"peers"`
	PendingCalls  int          `json:"pendingCalls"`
	Conversations int          `json:"conversations"`
}

type PeerStatus struct {
	ID               string    `json:"id"`
	ConnectedAt      time.Time `json:"connectedAt"`
	ConnectedSeconds int64     `json:"connectedSeconds"`
	Writable         bool      `json:"writable"`
}

type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

type ConversationSummary struct {
	ID           string    `json:"id"`
	PeerID       string    `json:"peerId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Exchanges    int       `json:"exchanges"`
}

type ConversationResponse struct {
	ID        string     `json:"id"`
	PeerID    string     `json:"peerId"`
	CreatedAt time.Time  `json:"createdAt"`
	Exchanges []Exchange `json:"exchanges"`
}

type Exchange struct {
	Request     string    `json:"request"`
	Reply       string    `json:"reply"`
	CompletedAt time.Time `json:"completedAt"`
}

type chatCompletionResponse struct {
	ID             string       `json:"id"`
	Object         string       `json:"object"`
	Created        int64        `json:"created"`
	Model          string       `json:"model"`
	ConversationID string       `json:"conversation_id,omitempty"`
	Choices        []chatChoice `json:"choices"`
	Usage          chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int               `json:"index"`
	Message      chatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type chatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type modelListResponse struct {
	Object string      `json:"object"`
	Data   []modelInfo `json:"data"`
}

type modelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

package domain

import (
	"strings"
	"time"
)

// Call is a normalized inbound request: deliver Text to one attached peer
// and wait for that peer's reply.
type Call struct {
	// Text is the message to deliver. It must contain at least one
	// non-whitespace character.
	Text string
	// PeerID pins the call to a specific peer when set. When empty the
	// dispatcher picks any writable peer.
	PeerID PeerID
	// ConversationID continues an existing conversation when set. When
	// empty a fresh conversation is started.
	ConversationID string
	// RequestID is an optional caller-supplied correlation identifier.
	// When empty the dispatcher assigns one.
	RequestID string
}

func (c Call) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyMessage
	}

	return nil
}

// OutboundCall is the correlated unit handed to a peer link for delivery.
type OutboundCall struct {
	RequestID      string
	ConversationID string
	Text           string
	SentAt         time.Time
}

// Reply is the completed result of a dispatched call.
type Reply struct {
	ConversationID string
	Text           string
}

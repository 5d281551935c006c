package domain

import "time"

// Exchange is one completed request/reply pair inside a conversation.
type Exchange struct {
	Request     string
	Reply       string
	CompletedAt time.Time
}

// Conversation is the audit record of completed exchanges with one peer.
// Only successful calls are recorded.
type Conversation struct {
	ID        string
	PeerID    PeerID
	CreatedAt time.Time
	Exchanges []Exchange
}

// LastActivity returns the completion time of the newest exchange, or the
// creation time when no exchange has completed yet.
func (c Conversation) LastActivity() time.Time {
	if len(c.Exchanges) == 0 {
		return c.CreatedAt
	}

	return c.Exchanges[len(c.Exchanges)-1].CompletedAt
}

// Summary collapses the conversation into its listing row.
func (c Conversation) Summary() ConversationSummary {
	return ConversationSummary{
		ID:           c.ID,
		PeerID:       c.PeerID,
		CreatedAt:    c.CreatedAt,
		LastActivity: c.LastActivity(),
		Exchanges:    len(c.Exchanges),
	}
}

// ConversationSummary is the per-conversation row returned by listings.
type ConversationSummary struct {
	ID           string
	PeerID       PeerID
	CreatedAt    time.Time
	LastActivity time.Time
	Exchanges    int
}

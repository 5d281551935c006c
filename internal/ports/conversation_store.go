package ports

import (
	"context"

	"github.com/bnema/tabbridge/internal/domain"
)

type ConversationStore interface {
	// Append records a completed exchange, creating the conversation on
	// first use and binding it to the given peer.
	Append(ctx context.Context, conversationID string, peerID domain.PeerID, exchange domain.Exchange) error
	GetByID(ctx context.Context, conversationID string) (domain.Conversation, error)
	List(ctx context.Context) ([]domain.ConversationSummary, error)
}

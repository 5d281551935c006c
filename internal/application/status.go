package application

import (
	"context"
	"fmt"

	"github.com/bnema/tabbridge/internal/domain"
)

// Status is the hub's read model for status consumers.
type Status struct {
	Peers         []domain.PeerInfo
	PendingCalls  int
	Conversations int
}

func (h *Hub) Status(ctx context.Context) (Status, error) {
	summaries, err := h.store.List(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("list conversations: %w", err)
	}

	return Status{
		Peers:         h.Peers(),
		PendingCalls:  h.PendingCalls(),
		Conversations: len(summaries),
	}, nil
}

package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/tabbridge/internal/domain"
	"github.com/bnema/tabbridge/internal/ports"
)

// Store keeps conversation history in process memory. History does not
// survive a restart.
type Store struct {
	clock ports.Clock

	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	order         []string
}

var _ ports.ConversationStore = (*Store)(nil)

func New(clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{
		clock:         clock,
		conversations: make(map[string]*domain.Conversation),
	}
}

// Append records a completed exchange. The first append creates the
// conversation and binds it to the replying peer.
func (s *Store) Append(_ context.Context, conversationID string, peerID domain.PeerID, exchange domain.Exchange) error {
	if strings.TrimSpace(conversationID) == "" {
		return fmt.Errorf("conversation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		c = &domain.Conversation{
			ID:        conversationID,
			PeerID:    peerID,
			CreatedAt: s.clock.Now(),
		}
		s.conversations[conversationID] = c
		s.order = append(s.order, conversationID)
	}
	c.Exchanges = append(c.Exchanges, exchange)

	return nil
}

func (s *Store) GetByID(_ context.Context, conversationID string) (domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return domain.Conversation{}, domain.ErrConversationNotFound
	}

	out := *c
	out.Exchanges = make([]domain.Exchange, len(c.Exchanges))
	copy(out.Exchanges, c.Exchanges)

	return out, nil
}

// List returns one summary per conversation in creation order.
func (s *Store) List(_ context.Context) ([]domain.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.ConversationSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.conversations[id].Summary())
	}

	return summaries, nil
}

package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bnema/tabbridge/internal/domain"
	"github.com/bnema/tabbridge/internal/ports"
)

// DefaultRequestTimeout is deliberately long: the peer's reply waits on a
// third-party UI generating text, so the bridge must not impose its own
// low-latency assumption.
const DefaultRequestTimeout = 10 * time.Minute

// Hub owns the set of attached peers and the table of in-flight calls.
// Both live under one mutex so that removing a peer and failing the calls
// it still owns happen as a single mutation.
type Hub struct {
	store   ports.ConversationStore
	clock   ports.Clock
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	peers map[domain.PeerID]*peerEntry
	calls map[string]*pendingCall
}

type HubConfig struct {
	Store  ports.ConversationStore
	Clock  ports.Clock
	Logger *zap.Logger
	// RequestTimeout bounds how long a dispatched call waits for its
	// reply. Zero or negative selects DefaultRequestTimeout.
	RequestTimeout time.Duration
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	return &Hub{
		store:   cfg.Store,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		timeout: cfg.RequestTimeout,
		peers:   make(map[domain.PeerID]*peerEntry),
		calls:   make(map[string]*pendingCall),
	}
}

// Dispatch delivers the call to one peer and blocks until that peer
// replies, the peer detaches, the timeout fires, or ctx is done.
func (h *Hub) Dispatch(ctx context.Context, call domain.Call) (domain.Reply, error) {
	if err := call.Validate(); err != nil {
		return domain.Reply{}, err
	}

	requestID := call.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	conversationID := call.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	h.mu.Lock()
	peerID, link, err := h.pickLocked(call.PeerID)
	if err != nil {
		h.mu.Unlock()
		return domain.Reply{}, err
	}
	pending, err := h.registerLocked(requestID, peerID)
	if err != nil {
		h.mu.Unlock()
		return domain.Reply{}, err
	}
	h.mu.Unlock()

	out := domain.OutboundCall{
		RequestID:      requestID,
		ConversationID: conversationID,
		Text:           call.Text,
		SentAt:         h.clock.Now(),
	}
	if err := link.Deliver(out); err != nil {
		// The entry is already gone if the peer detached mid-write; the
		// buffered result then carries the disconnect instead.
		if h.take(requestID) != nil {
			return domain.Reply{}, fmt.Errorf("deliver to peer %s: %w", peerID, err)
		}
	}

	h.logger.Debug("call dispatched",
		zap.String("request_id", requestID),
		zap.String("conversation_id", conversationID),
		zap.String("peer_id", string(peerID)),
	)

	select {
	case res := <-pending.result:
		if res.err != nil {
			return domain.Reply{}, res.err
		}
		h.record(ctx, conversationID, peerID, call.Text, res.text)
		return domain.Reply{ConversationID: conversationID, Text: res.text}, nil
	case <-ctx.Done():
		h.abandon(requestID)
		return domain.Reply{}, ctx.Err()
	}
}

func (h *Hub) record(ctx context.Context, conversationID string, peerID domain.PeerID, request, reply string) {
	exchange := domain.Exchange{
		Request:     request,
		Reply:       reply,
		CompletedAt: h.clock.Now(),
	}
	if err := h.store.Append(ctx, conversationID, peerID, exchange); err != nil {
		h.logger.Warn("record exchange",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}

// Close detaches every peer and fails their in-flight calls.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]domain.PeerID, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.DetachPeer(id)
	}
}

package application

import (
	"time"

	"go.uber.org/zap"

	"github.com/bnema/tabbridge/internal/domain"
)

// callResult is what a resolver hands back to the waiting dispatcher.
type callResult struct {
	text string
	err  error
}

// pendingCall is one in-flight request awaiting its correlated reply. The
// result channel is buffered so resolvers never block; whoever removes the
// entry from the table owns the single send.
type pendingCall struct {
	requestID string
	peerID    domain.PeerID
	result    chan callResult
	timer     *time.Timer
}

func (h *Hub) registerLocked(requestID string, peerID domain.PeerID) (*pendingCall, error) {
	if _, exists := h.calls[requestID]; exists {
		return nil, domain.ErrDuplicateRequestID
	}

	pending := &pendingCall{
		requestID: requestID,
		peerID:    peerID,
		result:    make(chan callResult, 1),
	}
	pending.timer = time.AfterFunc(h.timeout, func() { h.expire(requestID) })
	h.calls[requestID] = pending

	return pending, nil
}

// take removes and returns the pending call, or nil when it was already
// resolved. The caller that receives a non-nil entry owns its resolution.
func (h *Hub) take(requestID string) *pendingCall {
	h.mu.Lock()
	pending, ok := h.calls[requestID]
	if ok {
		delete(h.calls, requestID)
	}
	h.mu.Unlock()

	if !ok {
		return nil
	}
	pending.timer.Stop()

	return pending
}

// ResolveSuccess completes the call with the peer's reply text. Replies
// that match no waiting call are logged and dropped.
func (h *Hub) ResolveSuccess(requestID, text string) {
	pending := h.take(requestID)
	if pending == nil {
		h.logger.Warn("unmatched reply", zap.String("request_id", requestID))
		return
	}
	pending.result <- callResult{text: text}
}

// ResolveError fails the call with an error reported by the peer.
func (h *Hub) ResolveError(requestID, reason string) {
	pending := h.take(requestID)
	if pending == nil {
		h.logger.Warn("unmatched error reply", zap.String("request_id", requestID))
		return
	}
	pending.result <- callResult{err: domain.PeerReplyError{Reason: reason}}
}

func (h *Hub) expire(requestID string) {
	pending := h.take(requestID)
	if pending == nil {
		return
	}
	pending.result <- callResult{err: domain.RequestTimeoutError{Timeout: h.timeout}}

	h.logger.Warn("call timed out",
		zap.String("request_id", requestID),
		zap.String("peer_id", string(pending.peerID)),
		zap.Duration("timeout", h.timeout),
	)
}

// abandon drops the entry without waking anyone. Used when the caller is
// gone and the result has nowhere to go.
func (h *Hub) abandon(requestID string) {
	if h.take(requestID) != nil {
		h.logger.Debug("call abandoned", zap.String("request_id", requestID))
	}
}

// PendingCalls reports how many requests are still awaiting replies.
func (h *Hub) PendingCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.calls)
}

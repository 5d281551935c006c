package application

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bnema/tabbridge/internal/domain"
	"github.com/bnema/tabbridge/internal/ports"
)

// peerEntry pairs a live link with its attach-time bookkeeping.
type peerEntry struct {
	link        ports.PeerLink
	connectedAt time.Time
}

// AttachPeer registers the link and returns its assigned identifier.
func (h *Hub) AttachPeer(link ports.PeerLink) domain.PeerID {
	id := domain.PeerID(uuid.NewString())

	h.mu.Lock()
	h.peers[id] = &peerEntry{link: link, connectedAt: h.clock.Now()}
	total := len(h.peers)
	h.mu.Unlock()

	h.logger.Info("peer attached",
		zap.String("peer_id", string(id)),
		zap.Int("peers", total),
	)

	return id
}

// DetachPeer removes the peer, closes its link and, in the same mutation,
// fails every call it still owns. Safe to call more than once per peer.
func (h *Hub) DetachPeer(id domain.PeerID) {
	h.mu.Lock()
	entry, attached := h.peers[id]
	delete(h.peers, id)

	var released []*pendingCall
	for requestID, pending := range h.calls {
		if pending.peerID == id {
			delete(h.calls, requestID)
			released = append(released, pending)
		}
	}
	total := len(h.peers)
	h.mu.Unlock()

	if attached {
		_ = entry.link.Close()
	}

	for _, pending := range released {
		pending.timer.Stop()
		pending.result <- callResult{err: domain.PeerDisconnectedError{PeerID: id}}
	}

	if !attached {
		return
	}

	h.logger.Info("peer detached",
		zap.String("peer_id", string(id)),
		zap.Int("released_calls", len(released)),
		zap.Int("peers", total),
	)
}

// pickLocked selects the delivery target. A pinned id must name a writable
// peer; otherwise the longest-attached writable peer wins.
func (h *Hub) pickLocked(id domain.PeerID) (domain.PeerID, ports.PeerLink, error) {
	if id != "" {
		entry, ok := h.peers[id]
		if !ok || !entry.link.Ready() {
			return "", nil, domain.NoPeerAvailableError{Unwritable: h.unwritableLocked()}
		}

		return id, entry.link, nil
	}

	var (
		bestID    domain.PeerID
		bestEntry *peerEntry
	)
	for candidate, entry := range h.peers {
		if !entry.link.Ready() {
			continue
		}
		switch {
		case bestEntry == nil:
			bestID, bestEntry = candidate, entry
		case entry.connectedAt.Before(bestEntry.connectedAt):
			bestID, bestEntry = candidate, entry
		case entry.connectedAt.Equal(bestEntry.connectedAt) && candidate < bestID:
			bestID, bestEntry = candidate, entry
		}
	}
	if bestEntry == nil {
		return "", nil, domain.NoPeerAvailableError{Unwritable: h.unwritableLocked()}
	}

	return bestID, bestEntry.link, nil
}

func (h *Hub) unwritableLocked() int {
	n := 0
	for _, entry := range h.peers {
		if !entry.link.Ready() {
			n++
		}
	}

	return n
}

// Peers returns a stable snapshot of attached peers, oldest first.
func (h *Hub) Peers() []domain.PeerInfo {
	h.mu.Lock()
	infos := make([]domain.PeerInfo, 0, len(h.peers))
	for id, entry := range h.peers {
		infos = append(infos, domain.PeerInfo{
			ID:          id,
			ConnectedAt: entry.connectedAt,
			Writable:    entry.link.Ready(),
		})
	}
	h.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ConnectedAt.Equal(infos[j].ConnectedAt) {
			return infos[i].ID < infos[j].ID
		}

		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})

	return infos
}

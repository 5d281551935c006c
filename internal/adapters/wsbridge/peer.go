package wsbridge

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bnema/tabbridge/internal/domain"
	"github.com/bnema/tabbridge/internal/ports"
)

var errLinkClosed = errors.New("peer link closed")

// peer wraps one extension socket as a hub-attachable link. The write
// mutex serializes frame writes; gorilla conns allow a single writer.
type peer struct {
	conn      *websocket.Conn
	writeWait time.Duration

	// id is assigned once right after attach, before any pump starts.
	id domain.PeerID

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ ports.PeerLink = (*peer)(nil)

func newPeer(conn *websocket.Conn, writeWait time.Duration) *peer {
	return &peer{conn: conn, writeWait: writeWait, done: make(chan struct{})}
}

func (p *peer) Deliver(call domain.OutboundCall) error {
	return p.writeFrame(frame{
		Type:           frameClientMessage,
		RequestID:      call.RequestID,
		ConversationID: call.ConversationID,
		Message:        call.Text,
		Timestamp:      call.SentAt.UnixMilli(),
	})
}

func (p *peer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.closed
}

// Close is idempotent; the first call closes the socket and stops the
// ping loop.
func (p *peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	return p.conn.Close()
}

func (p *peer) writeFrame(f frame) error {
	if !p.Ready() {
		return errLinkClosed
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeWait))

	return p.conn.WriteJSON(f)
}

func (p *peer) writeControl(messageType int) error {
	return p.conn.WriteControl(messageType, nil, time.Now().Add(p.writeWait))
}

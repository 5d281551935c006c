package ports

import "github.com/bnema/tabbridge/internal/domain"

// PeerLink is one live channel to an attached peer. Deliver must be safe
// for concurrent use. Ready reports false once the link has closed.
type PeerLink interface {
	Deliver(call domain.OutboundCall) error
	Ready() bool
	Close() error
}

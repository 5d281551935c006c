package domain

import "time"

type PeerID string

// PeerInfo describes one attached peer for status reporting.
type PeerInfo struct {
	ID          PeerID
	ConnectedAt time.Time
	Writable    bool
}

// ConnectedFor reports how long the peer has been attached as of now.
func (p PeerInfo) ConnectedFor(now time.Time) time.Duration {
	if p.ConnectedAt.IsZero() || now.Before(p.ConnectedAt) {
		return 0
	}

	return now.Sub(p.ConnectedAt)
}

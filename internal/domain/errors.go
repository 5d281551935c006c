package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyMessage         = errors.New("message has no extractable text")
	ErrDuplicateRequestID   = errors.New("request id already pending")
	ErrConversationNotFound = errors.New("conversation not found")
)

// NoPeerAvailableError reports that dispatch found no writable peer.
// Unwritable counts peers that are attached but not accepting writes.
type NoPeerAvailableError struct {
	Unwritable int
}

func (e NoPeerAvailableError) Error() string {
	if e.Unwritable > 0 {
		return fmt.Sprintf("no peer available (%d attached but unwritable)", e.Unwritable)
	}

	return "no peer available"
}

// RequestTimeoutError reports that no reply arrived within the window.
type RequestTimeoutError struct {
	Timeout time.Duration
}

func (e RequestTimeoutError) Error() string {
	return fmt.Sprintf("no reply within %s", e.Timeout)
}

// PeerDisconnectedError reports that the owning peer detached while the
// call was still waiting.
type PeerDisconnectedError struct {
	PeerID PeerID
}

func (e PeerDisconnectedError) Error() string {
	return fmt.Sprintf("peer %s disconnected before replying", e.PeerID)
}

// PeerReplyError carries a failure reported by the peer itself.
type PeerReplyError struct {
	Reason string
}

func (e PeerReplyError) Error() string {
	if e.Reason == "" {
		return "peer reported an unspecified error"
	}

	return fmt.Sprintf("peer reported error: %s", e.Reason)
}

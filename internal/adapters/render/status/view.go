package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/tabbridge/internal/adapters/httpapi"
)

func renderView(status httpapi.StatusResponse, s styles) string {
	lines := []string{
		s.title.Render("Tabbridge Hub"),
		s.header.Render(fmt.Sprintf("version: %s  uptime: %s", status.Version, formatSeconds(status.UptimeSeconds))),
		s.section.Render(renderPeers(status, s)),
		s.section.Render(renderCounts(status, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPeers(status httpapi.StatusResponse, s styles) string {
	parts := []string{
		s.detail.Render(fmt.Sprintf("peers: %d", len(status.Peers))),
	}

	if len(status.Peers) == 0 {
		parts = append(parts, s.empty.Render("No peers attached. Waiting for an extension to connect."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, peer := range status.Peers {
		parts = append(parts, renderPeer(peer, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderPeer(peer httpapi.PeerStatus, s styles) string {
	dot := s.dotReady.Render("●")
	state := "writable"
	if !peer.Writable {
		dot = s.dotStuck.Render("●")
		state = "unwritable"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		dot,
		" ",
		s.peer.Render(shortID(peer.ID)),
		"  ",
		s.detail.Render(fmt.Sprintf("connected %s  %s", formatSeconds(peer.ConnectedSeconds), state)),
	)
}

func renderCounts(status httpapi.StatusResponse, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.detail.Render(fmt.Sprintf("pending calls: %d", status.PendingCalls)),
		s.detail.Render(fmt.Sprintf("conversations: %d", status.Conversations)),
	)
}

// shortID keeps the first UUID group; full identifiers live in the JSON
// output.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}

	return id[:8]
}

func formatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	return (time.Duration(seconds) * time.Second).String()
}

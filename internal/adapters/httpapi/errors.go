package httpapi

import (
	"errors"
	"net/http"

	"github.com/bnema/tabbridge/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapError translates dispatch failures into HTTP status codes and stable
// machine-readable error codes.
func mapError(err error) (int, string) {
	var noPeer domain.NoPeerAvailableError
	var timeout domain.RequestTimeoutError
	var gone domain.PeerDisconnectedError
	var peerErr domain.PeerReplyError

	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, domain.ErrDuplicateRequestID):
		return http.StatusConflict, "duplicate_request_id"
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound, "conversation_not_found"
	case errors.As(err, &noPeer):
		return http.StatusServiceUnavailable, "no_peer_available"
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout, "request_timeout"
	case errors.As(err, &gone):
		return http.StatusBadGateway, "peer_disconnected"
	case errors.As(err, &peerErr):
		return http.StatusBadGateway, "peer_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}

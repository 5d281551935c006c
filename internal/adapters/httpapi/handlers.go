package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bnema/tabbridge/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	reply, err := s.hub.Dispatch(r.Context(), domain.Call{
		Text:           req.Text,
		PeerID:         domain.PeerID(req.PeerID),
		ConversationID: req.ConversationID,
		RequestID:      req.RequestID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{
		ConversationID: reply.ConversationID,
		Text:           reply.Text,
	})
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Stream {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "streaming_unsupported",
			Message: "streaming responses are not supported",
		}})
		return
	}

	text, err := req.extractText()
	if err != nil {
		s.writeError(w, err)
		return
	}

	reply, err := s.hub.Dispatch(r.Context(), domain.Call{
		Text:           text,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatCompletionResponse{
		ID:             "chatcmpl-" + uuid.NewString(),
		Object:         "chat.completion",
		Created:        s.clock.Now().Unix(),
		Model:          s.model(req.Model),
		ConversationID: reply.ConversationID,
		Choices: []chatChoice{{
			Index:        0,
			Message:      chatChoiceMessage{Role: "assistant", Content: reply.Text},
			FinishReason: "stop",
		}},
	})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, modelListResponse{
		Object: "list",
		Data: []modelInfo{{
			ID:      s.cfg.Model,
			Object:  "model",
			Created: s.started.Unix(),
			OwnedBy: "tabbridge",
		}},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.hub.Status(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := s.clock.Now()
	resp := StatusResponse{
		Version:       s.cfg.Version,
		UptimeSeconds: int64(now.Sub(s.started).Seconds()),
		Peers:         make([]PeerStatus, 0, len(status.Peers)),
		PendingCalls:  status.PendingCalls,
		Conversations: status.Conversations,
	}
	for _, peer := range status.Peers {
		resp.Peers = append(resp.Peers, PeerStatus{
			ID:               string(peer.ID),
			ConnectedAt:      peer.ConnectedAt,
			ConnectedSeconds: int64(peer.ConnectedFor(now).Seconds()),
			Writable:         peer.Writable,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ConversationListResponse{Conversations: make([]ConversationSummary, 0, len(summaries))}
	for _, summary := range summaries {
		resp.Conversations = append(resp.Conversations, ConversationSummary{
			ID:           summary.ID,
			PeerID:       string(summary.PeerID),
			CreatedAt:    summary.CreatedAt,
			LastActivity: summary.LastActivity,
			Exchanges:    summary.Exchanges,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := s.store.GetByID(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ConversationResponse{
		ID:        conversation.ID,
		PeerID:    string(conversation.PeerID),
		CreatedAt: conversation.CreatedAt,
		Exchanges: make([]Exchange, 0, len(conversation.Exchanges)),
	}
	for _, exchange := range conversation.Exchanges {
		resp.Exchanges = append(resp.Exchanges, Exchange{
			Request:     exchange.Request,
			Reply:       exchange.Reply,
			CompletedAt: exchange.CompletedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bnema/tabbridge/internal/application"
	"github.com/bnema/tabbridge/internal/ports"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultModelID      = "tabbridge"
)

type Config struct {
	// Model is the model identifier advertised on /v1/models and echoed
	// in chat completions when the client names none.
	Model        string
	Version      string
	MaxBodyBytes int64
	Clock        ports.Clock
}

// Server exposes the caller-facing HTTP surface and mounts the peer
// socket endpoint.
type Server struct {
	hub        *application.Hub
	store      ports.ConversationStore
	peerSocket http.Handler
	logger     *zap.Logger
	cfg        Config
	clock      ports.Clock
	started    time.Time
}

func NewServer(hub *application.Hub, store ports.ConversationStore, peerSocket http.Handler, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModelID
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Server{
		hub:        hub,
		store:      store,
		peerSocket: peerSocket,
		logger:     logger,
		cfg:        cfg,
		clock:      clock,
		started:    clock.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/message", s.handleMessage)
		r.Get("/status", s.handleStatus)
		r.Get("/conversations", s.handleListConversations)
		r.Get("/conversations/{conversationID}", s.handleGetConversation)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat/completions", s.handleChatCompletions)
		r.Get("/models", s.handleModels)
	})
	if s.peerSocket != nil {
		r.Handle("/ws", s.peerSocket)
	}

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) model(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}

	return s.cfg.Model
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "invalid_request",
			Message: fmt.Sprintf("decode request body: %v", err),
		}})
		return false
	}

	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

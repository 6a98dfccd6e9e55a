// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	maxBodyBytes = 1 << 20

	msgInternalError = "Lỗi hệ thống"
	msgBadRequest    = "Câu hỏi không hợp lệ"
)

type Config struct {
	Host         string        `envconfig:"HOST" split_words:"true" default:"0.0.0.0"`
	Port         int           `envconfig:"PORT" split_words:"true" default:"3001"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
}

// Chat is the single entry point the HTTP layer depends on.
type Chat interface {
	Process(ctx context.Context, question, token string) (contractx.Answer, error)
}

type Server struct {
	httpServer *http.Server
	chat       Chat
}

func New(cfg Config, chat Chat) *Server {
	s := &Server{chat: chat}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req chatRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgBadRequest})
		return
	}

	answer, err := s.chat.Process(r.Context(), req.Question, bearerToken(r))
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("chat processing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgInternalError})
		return
	}

	log.Info().Str("request_id", requestID).Msg("chat request served")
	writeJSON(w, http.StatusOK, answer)
}

// bearerToken extracts the credential from the Authorization header, if any.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

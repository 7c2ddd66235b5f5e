// Package http provides the HTTP server infrastructure.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/domain/usecases"
)

const maxBodyBytes = 1 << 20

// errMalformedBody is reported for a body that is not a JSON chat payload.
const errMalformedBody = "잘못된 요청 형식입니다."

// Options configures the server.
type Options struct {
	Addr           string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP server for the chat API.
type Server struct {
	chat     *usecases.ChatUseCase
	opts     Options
	validate *validator.Validate
	limiter  *RateLimiter
}

// NewServer creates a new HTTP server.
func NewServer(chat *usecases.ChatUseCase, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":5000"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 10
	}
	return &Server{
		chat:     chat,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		limiter:  NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(s.limiter.Middleware).Post("/chat", s.handleChat)
		r.Get("/clients", s.handleClients)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      300 * time.Second, // model calls can be slow
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("addr", s.opts.Addr).Msg("boardchat server starting")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// chatPayload is the body of POST /api/chat.
type chatPayload struct {
	Message string           `json:"message" validate:"required"`
	History []historyPayload `json:"history" validate:"max=100"`
}

type historyPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat answers one question.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("malformed chat payload")
		writeError(w, http.StatusBadRequest, errMalformedBody)
		return
	}

	if err := s.validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Message" {
			writeError(w, http.StatusBadRequest, usecases.ErrMessageRequired.Error())
			return
		}
		writeError(w, http.StatusBadRequest, errMalformedBody)
		return
	}

	req := &entities.ChatRequest{Message: payload.Message}
	for _, h := range payload.History {
		req.History = append(req.History, entities.ChatMessage{Role: h.Role, Content: h.Content})
	}

	resp, err := s.chat.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, usecases.ErrMessageRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg := err.Error()
		var collabErr *ports.CollaboratorError
		if errors.As(err, &collabErr) && collabErr.Message != "" {
			msg = collabErr.Message
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: resp.Answer, Success: true})
}

// handleClients lists the client names of the current corpus.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	names := s.chat.ClientNames(r.Context())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"clients": names})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

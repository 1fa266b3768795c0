package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/poiesic/talentscout"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/events"
	"github.com/poiesic/talentscout/ingestion"
	"github.com/poiesic/talentscout/retrieval"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// Service is what the HTTP layer needs from the application.
type Service interface {
	SubmitJob(ctx context.Context, query, jobDescription string, filters core.Filters) (core.JobID, error)
	JobStatus(ctx context.Context, id core.JobID) (*talentscout.JobStatusView, error)
	Subscribe(ctx context.Context, id core.JobID, sink events.Sink) error
	CandidateDetail(ctx context.Context, id core.ID) (*talentscout.CandidateDetail, error)
	SetSocialHandle(ctx context.Context, id core.ID, handle string) (*core.Candidate, error)
	Posts(ctx context.Context, id core.ID, limit int) ([]talentscout.Post, error)
	IngestPosts(ctx context.Context, id core.ID, posts []*core.SocialPost) (*ingestion.Result, error)
	FetchPosts(ctx context.Context, id core.ID, limit int) (*ingestion.Result, error)
	Retrieve(ctx context.Context, ownerID core.ID, queryText string, k int) ([]retrieval.Citation, error)
	Chat(ctx context.Context, req retrieval.ChatRequest) (*retrieval.Answer, error)
	ChatHandle(ctx context.Context, req retrieval.HandleChatRequest) (*retrieval.Answer, error)
}

// Server routes HTTP requests to a Service.
type Server struct {
	svc     Service
	origins []string
	logger  *slog.Logger
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow-list. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server for svc.
func New(svc Service, opts ...Option) *Server {
	s := &Server{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.postSearch)
	mux.HandleFunc("GET /search/{id}", s.getSearch)
	mux.HandleFunc("GET /events/{id}", s.getEvents)
	mux.HandleFunc("GET /candidate/{id}", s.getCandidate)
	mux.HandleFunc("POST /candidate/{id}/social", s.postSocial)
	mux.HandleFunc("GET /candidate/{id}/posts", s.getPosts)
	mux.HandleFunc("POST /candidate/{id}/posts", s.postPosts)
	mux.HandleFunc("POST /candidate/{id}/posts/fetch", s.postFetchPosts)
	mux.HandleFunc("GET /candidate/{id}/retrieve", s.getRetrieve)
	mux.HandleFunc("POST /candidate/{id}/chat", s.postChat)
	mux.HandleFunc("POST /chat/social/{handle}", s.postChatHandle)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.handler = s.logRequests(s.cors(mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) allowed(origin string) bool {
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

// cors answers preflight requests and tags responses for allowed origins.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.allowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

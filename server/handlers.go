package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/retrieval"
)

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid("request body required")
		}
		return invalid("malformed request body: %v", err)
	}
	return nil
}

func candidateID(r *http.Request) (core.ID, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, invalid("invalid candidate id %q", r.PathValue("id"))
	}
	return core.ID(id), nil
}

// intParam reads an optional non-negative integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalid("%s must be a non-negative integer", name)
	}
	return n, nil
}

type searchRequest struct {
	Query          string       `json:"query"`
	JobDescription string       `json:"job_description"`
	Filters        core.Filters `json:"filters"`
}

func (s *Server) postSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.svc.SubmitJob(r.Context(), req.Query, req.JobDescription, req.Filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.JobID{"search_id": id})
}

func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.JobStatus(r.Context(), core.JobID(r.PathValue("id")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.svc.CandidateDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type socialRequest struct {
	Handle string `json:"twitter_handle"`
}

func (s *Server) postSocial(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req socialRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.SetSocialHandle(r.Context(), id, req.Handle); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) getPosts(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = 50
	}
	posts, err := s.svc.Posts(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type postInput struct {
	PostID      string    `json:"post_id"`
	Source      string    `json:"source"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	LikeCount   int       `json:"like_count"`
	RepostCount int       `json:"repost_count"`
}

type ingestRequest struct {
	Posts []postInput `json:"posts"`
}

type ingestResponse struct {
	OK       bool `json:"ok"`
	Received int  `json:"received"`
	Ingested int  `json:"ingested"`
}

func (s *Server) postPosts(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ingestRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	posts := make([]*core.SocialPost, len(req.Posts))
	for i, p := range req.Posts {
		posts[i] = &core.SocialPost{
			Source:      p.Source,
			PostID:      p.PostID,
			Text:        p.Text,
			CreatedAt:   p.CreatedAt,
			LikeCount:   p.LikeCount,
			RepostCount: p.RepostCount,
		}
	}
	result, err := s.svc.IngestPosts(r.Context(), id, posts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{OK: true, Received: result.Received, Ingested: result.Added})
}

type fetchRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) postFetchPosts(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req fetchRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	result, err := s.svc.FetchPosts(r.Context(), id, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{OK: true, Received: result.Received, Ingested: result.Added})
}

func (s *Server) getRetrieve(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	k, err := intParam(r, "k")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	hits, err := s.svc.Retrieve(r.Context(), id, q, k)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": hits})
}

type chatRequest struct {
	Message string   `json:"message"`
	K       int      `json:"k"`
	Texts   []string `json:"texts"`
}

func (s *Server) postChat(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.K < 0 {
		s.writeError(w, r, invalid("k must be non-negative"))
		return
	}
	answer, err := s.svc.Chat(r.Context(), retrieval.ChatRequest{
		CandidateID: id,
		Message:     req.Message,
		K:           req.K,
		Texts:       req.Texts,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type handleChatRequest struct {
	chatRequest
	Document string `json:"document"`
}

func (s *Server) postChatHandle(w http.ResponseWriter, r *http.Request) {
	var req handleChatRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.K < 0 {
		s.writeError(w, r, invalid("k must be non-negative"))
		return
	}
	answer, err := s.svc.ChatHandle(r.Context(), retrieval.HandleChatRequest{
		Handle:   r.PathValue("handle"),
		Message:  req.Message,
		K:        req.K,
		Texts:    req.Texts,
		Document: req.Document,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

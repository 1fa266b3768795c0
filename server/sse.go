package server

import (
	"fmt"
	"net/http"

	"github.com/poiesic/talentscout/core"
)

// sseSink writes events in text/event-stream framing.
type sseSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (s *sseSink) KeepAlive() error {
	if _, err := fmt.Fprint(s.w, "event: ping\n\n"); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *sseSink) Data(payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	id := core.JobID(r.PathValue("id"))
	if _, err := s.svc.JobStatus(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{w: w, rc: http.NewResponseController(w)}
	if err := s.svc.Subscribe(r.Context(), id, sink); err != nil {
		s.logger.Debug("event stream ended", "job", id, "err", err)
	}
}

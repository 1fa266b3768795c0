package events

import (
	"encoding/json"

	"github.com/poiesic/talentscout/core"
)

// Type names an event payload.
type Type string

const (
	TypeProgress  Type = "progress"
	TypeCandidate Type = "candidate"
	TypeFinished  Type = "finished"
	TypeError     Type = "error"
)

// CandidateSummary is the candidate payload of a TypeCandidate event.
type CandidateSummary struct {
	ID          core.ID    `json:"id"`
	Name        string     `json:"name"`
	Affiliation string     `json:"affiliation"`
	Topics      []string   `json:"topics"`
	Score       float64    `json:"score"`
	Seniority   core.Level `json:"seniority"`
}

// Event is one message on a job stream.
type Event struct {
	Type      Type              `json:"type"`
	Progress  *int              `json:"progress,omitempty"`
	Candidate *CandidateSummary `json:"candidate,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Progress reports job progress in percent.
func Progress(p int) Event {
	return Event{Type: TypeProgress, Progress: &p}
}

// CandidateFound reports a scored candidate.
func CandidateFound(c CandidateSummary) Event {
	if c.Topics == nil {
		c.Topics = []string{}
	}
	return Event{Type: TypeCandidate, Candidate: &c}
}

// Finished reports successful completion.
func Finished() Event {
	return Event{Type: TypeFinished}
}

// Failed reports that the job aborted.
func Failed(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// Encode renders the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

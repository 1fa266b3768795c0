package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// ChatRequest is a question for a candidate persona.
type ChatRequest struct {
	CandidateID core.ID
	Message     string
	K           int      // 0 selects the strategy default
	Texts       []string // optional inline corpus
}

// HandleChatRequest is a question for a social account that has no stored
// candidate. Document is a newline separated corpus read only when Texts is
// empty; its lines are cited as line_N.
type HandleChatRequest struct {
	Handle   string
	Message  string
	K        int
	Texts    []string
	Document string
}

// InsufficientDataAnswer is the reply for a handle with nothing to answer from.
const InsufficientDataAnswer = "Insufficient data for this user."

// Citation points at a post an answer was grounded on.
type Citation struct {
	PostID    string    `json:"post_id"`
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Answer is a persona reply with the posts it was built from.
type Answer struct {
	Text      string     `json:"answer"`
	Source    string     `json:"source"`
	Citations []Citation `json:"citations"`
}

// Chatter answers questions in a candidate's voice from their posts.
type Chatter struct {
	candidates storage.CandidateRepository
	strategies []Strategy
	chat       ai.ChatCompleter
	logger     *slog.Logger
}

// NewChatter creates a Chatter that resolves corpora with strategies, in order.
func NewChatter(candidates storage.CandidateRepository, chat ai.ChatCompleter, strategies []Strategy, logger *slog.Logger) (*Chatter, error) {
	if candidates == nil {
		return nil, ErrRepositoryRequired
	}
	if chat == nil {
		return nil, ErrChatCompleterRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chatter{
		candidates: candidates,
		strategies: strategies,
		chat:       chat,
		logger:     logger.With("component", "chat"),
	}, nil
}

// Chat answers req.Message as the candidate.
func (c *Chatter) Chat(ctx context.Context, req ChatRequest) (*Answer, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrEmptyMessage)
	}
	candidate, err := c.candidates.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}

	source, hits, err := Resolve(ctx, c.strategies, Subject{Candidate: candidate, InlineTexts: req.Texts}, message, req.K, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved chat corpus", "candidate", candidate.Id, "source", source, "hits", len(hits))
	return c.answer(ctx, candidate, message, source, hits)
}

// ChatHandle answers req.Message as the owner of a social handle. Posts are
// fetched and ranked without being stored. A handle with no posts and no
// supplied corpus gets InsufficientDataAnswer rather than an error.
func (c *Chatter) ChatHandle(ctx context.Context, req HandleChatRequest) (*Answer, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrEmptyMessage)
	}
	handle := strings.TrimPrefix(strings.TrimSpace(req.Handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrHandleRequired)
	}
	texts := req.Texts
	if len(texts) == 0 && strings.TrimSpace(req.Document) != "" {
		texts = strings.Split(req.Document, "\n")
	}

	source, hits, err := Resolve(ctx, c.strategies, Subject{Handle: handle, InlineTexts: texts}, message, req.K, c.logger)
	if errors.Is(err, ErrNoCorpus) {
		c.logger.Debug("no corpus for handle", "handle", handle)
		return &Answer{Text: InsufficientDataAnswer, Citations: []Citation{}}, nil
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved chat corpus", "handle", handle, "source", source, "hits", len(hits))
	return c.answer(ctx, &core.Candidate{Name: "@" + handle, SocialHandle: handle}, message, source, hits)
}

func (c *Chatter) answer(ctx context.Context, persona *core.Candidate, message, source string, hits []Hit) (*Answer, error) {
	text, err := c.chat.CompleteChat(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: personaPrompt(persona)},
		{Role: ai.RoleUser, Content: questionPrompt(message, hits)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCollaboratorUnavailable, err)
	}
	return &Answer{Text: text, Source: source, Citations: Citations(hits)}, nil
}

// Citations converts hits to their public form.
func Citations(hits []Hit) []Citation {
	citations := make([]Citation, len(hits))
	for i, h := range hits {
		citations[i] = Citation{PostID: h.Ref, Text: h.Text, Score: h.Score, CreatedAt: h.CreatedAt}
	}
	return citations
}

func personaPrompt(c *core.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Answer questions in first person as if you're having a casual conversation.\n\n", c.Name)
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	if c.Affiliation != "" {
		fmt.Fprintf(&b, "Affiliation: %s\n", c.Affiliation)
	}
	b.WriteString(`
Match the writing style, tone and grammar of your posts below: the same jargon,
abbreviations, sentence length and humor. Base answers only on your posts and
cite them with bracketed numbers such as [1]. If you don't know something, say so.`)
	return b.String()
}

func questionPrompt(message string, hits []Hit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nYour posts:\n", message)
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, h.Text)
	}
	return b.String()
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studymate/app/config"
	"studymate/app/service/history"
	"studymate/app/service/memory"

	"github.com/google/uuid"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const memoryNoteSource = "assistant_session_memory"

// ErrEmptyMessage rejects requests without message text.
var ErrEmptyMessage = errors.New("message must not be empty")

// NoteStore is the long-term memory surface the orchestrator depends on.
type NoteStore interface {
	Save(ctx context.Context, note memory.Note) error
	Search(ctx context.Context, query string, k int) ([]memory.Snippet, error)
}

// Service orchestrates a chat request: memory retrieval, prompt composition,
// generation, parsing, memory update, and history update.
type Service struct {
	memorySvc  NoteStore
	historySvc *history.Service
	gen        Generator
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[*memory.Service](di),
		do.MustInvoke[*history.Service](di),
		NewGenerator(cfg.LLM),
	), nil
}

func NewService(memorySvc NoteStore, historySvc *history.Service, gen Generator) *Service {
	return &Service{
		memorySvc:  memorySvc,
		historySvc: historySvc,
		gen:        gen,
	}
}

// Ask answers one user message within a session.
//
// Memory retrieval and parsing failures degrade (empty notes, raw-text
// answer); only a failed generation aborts the request. The returned
// response always carries all four fields.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*StructuredResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	style := NormalizeStyle(req.Style)

	var (
		snippets []memory.Snippet
		turns    []history.Turn
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		found, err := s.memorySvc.Search(groupCtx, message, 0)
		if err != nil {
			slog.Warn("Memory retrieval failed, composing without notes",
				"session_id", sessionID,
				"error", err,
			)
			return nil
		}
		snippets = found
		return nil
	})
	group.Go(func() error {
		turns = s.historySvc.Turns(sessionID)
		return nil
	})
	_ = group.Wait()

	prompt := composePrompt(message, turns, snippets, style)

	response, err := s.gen.Structured(ctx, prompt)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("gen.Structured: %w", err)
		}

		slog.Warn("Model output did not match the schema, degrading to raw answer",
			"session_id", sessionID,
			"error", err,
		)

		response = &StructuredResponse{Answer: strings.TrimSpace(parseErr.Raw)}
		response.normalize()
	}

	response.Answer = sanitizeAnswer(response.Answer)

	if err := s.memorySvc.Save(ctx, memory.Note{
		Text:      formatNote(message, response),
		Source:    memoryNoteSource,
		SessionID: sessionID,
	}); err != nil {
		// The user already has their answer, but a lost note is worth reporting.
		slog.Error("Failed to persist study note",
			"session_id", sessionID,
			"error", err,
		)
	}

	s.historySvc.Append(sessionID,
		history.Turn{Role: history.RoleUser, Text: message},
		history.Turn{Role: history.RoleAssistant, Text: response.Answer},
	)

	return response, nil
}

// ResetSession clears the session's turn history. Long-term notes survive.
func (s *Service) ResetSession(sessionID string) {
	s.historySvc.Reset(sessionID)
}

func formatNote(question string, response *StructuredResponse) string {
	keyPoints := "None"
	if len(response.KeyPoints) > 0 {
		keyPoints = strings.Join(response.KeyPoints, ", ")
	}

	followUps := "None"
	if len(response.SuggestedQuestions) > 0 {
		followUps = strings.Join(response.SuggestedQuestions, ", ")
	}

	return fmt.Sprintf("Question: %s\nAnswer: %s\nKey points: %s\nFollow-ups: %s",
		question, response.Answer, keyPoints, followUps)
}

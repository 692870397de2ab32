package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studymate/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/tmc/langchaingo/embeddings"
	openaillm "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/chroma"
)

// ErrUnavailable signals the vector store is unreachable or uninitialized.
// Readers degrade to "no relevant memory", writers must report the loss.
var ErrUnavailable = errors.New("memory store unavailable")

// VectorStore is the subset of the langchaingo vector store used here.
type VectorStore interface {
	AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error)
}

type Service struct {
	store VectorStore
	topK  int
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	embedClient, err := openaillm.New(
		openaillm.WithBaseURL(cfg.Embeddings.BaseURL),
		openaillm.WithToken(cfg.Embeddings.Token),
		openaillm.WithEmbeddingModel(cfg.Embeddings.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(embedClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := chroma.New(
		chroma.WithChromaURL(cfg.Memory.ChromaURL),
		chroma.WithEmbedder(embedder),
		chroma.WithNameSpace(cfg.Memory.Collection),
	)
	if err != nil {
		// The process still starts: every operation reports ErrUnavailable
		// and chat requests proceed without long-term memory.
		slog.Warn("Memory store is unavailable, starting without long-term memory",
			"url", cfg.Memory.ChromaURL,
			"error", err,
		)
		return NewWithStore(nil, cfg.Memory.TopK), nil
	}

	return NewWithStore(store, cfg.Memory.TopK), nil
}

// NewWithStore builds a Service over an existing vector store.
// A nil store yields a service that fails every operation with ErrUnavailable.
func NewWithStore(store VectorStore, topK int) *Service {
	if topK <= 0 {
		topK = 4
	}

	return &Service{
		store: store,
		topK:  topK,
	}
}

// Save persists a note to the vector store.
func (s *Service) Save(ctx context.Context, note Note) error {
	if s.store == nil {
		return ErrUnavailable
	}

	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	metadata := map[string]any{
		"created_at": note.CreatedAt.Format(time.RFC3339),
	}
	if note.Source != "" {
		metadata["source"] = note.Source
	}
	if note.SessionID != "" {
		metadata["session_id"] = note.SessionID
	}

	_, err := s.store.AddDocuments(ctx, []schema.Document{{
		PageContent: note.Text,
		Metadata:    metadata,
	}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return nil
}

// Search returns up to k notes nearest to the query, best match first.
// k <= 0 uses the configured default.
func (s *Service) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	if s.store == nil {
		return nil, ErrUnavailable
	}

	if k <= 0 {
		k = s.topK
	}

	docs, err := s.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return pie.Map(docs, func(doc schema.Document) Snippet {
		snippet := Snippet{
			Text:  doc.PageContent,
			Score: doc.Score,
		}
		if source, ok := doc.Metadata["source"].(string); ok {
			snippet.Source = source
		}
		return snippet
	}), nil
}

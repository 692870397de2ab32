package memory_test

import (
	"context"
	"errors"
	"testing"

	"studymate/app/service/memory"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

type fakeVectorStore struct {
	docs      []schema.Document
	addErr    error
	searchErr error

	added    []schema.Document
	lastK    int
	lastText string
}

func (f *fakeVectorStore) AddDocuments(_ context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, docs...)
	return []string{"id"}, nil
}

func (f *fakeVectorStore) SimilaritySearch(_ context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	f.lastText = query
	f.lastK = numDocuments
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.docs, nil
}

func TestSearchMapsDocuments(t *testing.T) {
	store := &fakeVectorStore{docs: []schema.Document{
		{PageContent: "entropy grows", Metadata: map[string]any{"source": "notes.md"}, Score: 0.91},
		{PageContent: "untagged", Metadata: map[string]any{}, Score: 0.42},
	}}
	svc := memory.NewWithStore(store, 4)

	snippets, err := svc.Search(context.Background(), "entropy", 2)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}

	if len(snippets) != 2 {
		t.Fatalf("unexpected snippet count: %d", len(snippets))
	}
	if snippets[0].Text != "entropy grows" || snippets[0].Source != "notes.md" || snippets[0].Score != 0.91 {
		t.Fatalf("first snippet mismatch: %+v", snippets[0])
	}
	if snippets[1].Source != "" {
		t.Fatalf("missing source metadata must map to empty string, got %q", snippets[1].Source)
	}
}

func TestSearchDefaultTopK(t *testing.T) {
	store := &fakeVectorStore{}
	svc := memory.NewWithStore(store, 7)

	if _, err := svc.Search(context.Background(), "anything", 0); err != nil {
		t.Fatalf("Search err: %v", err)
	}

	if store.lastK != 7 {
		t.Fatalf("expected configured top_k 7, got %d", store.lastK)
	}
}

func TestSearchWrapsStoreFailure(t *testing.T) {
	store := &fakeVectorStore{searchErr: errors.New("connection refused")}
	svc := memory.NewWithStore(store, 4)

	if _, err := svc.Search(context.Background(), "entropy", 2); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSaveRecordsMetadata(t *testing.T) {
	store := &fakeVectorStore{}
	svc := memory.NewWithStore(store, 4)

	err := svc.Save(context.Background(), memory.Note{
		Text:      "Question: what is entropy?\nAnswer: a measure of disorder",
		Source:    "assistant_session_memory",
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}

	if len(store.added) != 1 {
		t.Fatalf("expected one document, got %d", len(store.added))
	}

	doc := store.added[0]
	if doc.Metadata["source"] != "assistant_session_memory" {
		t.Fatalf("source metadata: %v", doc.Metadata["source"])
	}
	if doc.Metadata["session_id"] != "s1" {
		t.Fatalf("session metadata: %v", doc.Metadata["session_id"])
	}
	if _, ok := doc.Metadata["created_at"].(string); !ok {
		t.Fatalf("created_at metadata missing: %v", doc.Metadata)
	}
}

func TestSaveWrapsStoreFailure(t *testing.T) {
	store := &fakeVectorStore{addErr: errors.New("connection refused")}
	svc := memory.NewWithStore(store, 4)

	if err := svc.Save(context.Background(), memory.Note{Text: "x"}); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNilStoreIsUnavailable(t *testing.T) {
	svc := memory.NewWithStore(nil, 4)
	ctx := context.Background()

	if err := svc.Save(ctx, memory.Note{Text: "x"}); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("Save on nil store: %v", err)
	}
	if _, err := svc.Search(ctx, "x", 1); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("Search on nil store: %v", err)
	}
}

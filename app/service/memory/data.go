package memory

import "time"

// Note is a piece of text persisted for long-term semantic retrieval.
// Notes outlive sessions and are only reset by operator action on the store.
type Note struct {
	Text      string
	Source    string
	SessionID string
	CreatedAt time.Time
}

// Snippet is a retrieved note ranked by similarity to the query.
type Snippet struct {
	Text   string
	Source string
	Score  float32
}

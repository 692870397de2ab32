package history_test

import (
	"fmt"
	"sync"
	"testing"

	"studymate/app/service/history"
)

func TestAppendPreservesOrder(t *testing.T) {
	svc := history.NewWithLimit(20)

	svc.Append("s1", history.Turn{Role: history.RoleUser, Text: "first"})
	svc.Append("s1", history.Turn{Role: history.RoleAssistant, Text: "second"})

	turns := svc.Turns("s1")
	if len(turns) != 2 {
		t.Fatalf("unexpected turn count: got %d want 2", len(turns))
	}
	if turns[0].Text != "first" || turns[1].Text != "second" {
		t.Fatalf("unexpected order: %q, %q", turns[0].Text, turns[1].Text)
	}
}

func TestTurnsUnknownSession(t *testing.T) {
	svc := history.NewWithLimit(20)

	if turns := svc.Turns("missing"); len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}
}

func TestResetClearsHistory(t *testing.T) {
	svc := history.NewWithLimit(20)

	svc.Append("s1", history.Turn{Role: history.RoleUser, Text: "hello"})
	svc.Reset("s1")

	if turns := svc.Turns("s1"); len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d turns", len(turns))
	}
}

func TestResetUnknownSession(t *testing.T) {
	svc := history.NewWithLimit(20)

	// must not panic or create state
	svc.Reset("missing")

	if turns := svc.Turns("missing"); len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}
}

func TestSlidingWindowDropsOldest(t *testing.T) {
	svc := history.NewWithLimit(4)

	for i := 0; i < 6; i++ {
		svc.Append("s1", history.Turn{Role: history.RoleUser, Text: fmt.Sprintf("turn-%d", i)})
	}

	turns := svc.Turns("s1")
	if len(turns) != 4 {
		t.Fatalf("unexpected turn count: got %d want 4", len(turns))
	}
	if turns[0].Text != "turn-2" || turns[3].Text != "turn-5" {
		t.Fatalf("wrong window: first=%q last=%q", turns[0].Text, turns[3].Text)
	}
}

func TestAppendPairIsAtomic(t *testing.T) {
	svc := history.NewWithLimit(100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.Append("s1",
				history.Turn{Role: history.RoleUser, Text: fmt.Sprintf("q-%d", i)},
				history.Turn{Role: history.RoleAssistant, Text: fmt.Sprintf("a-%d", i)},
			)
		}(i)
	}
	wg.Wait()

	turns := svc.Turns("s1")
	if len(turns) != 40 {
		t.Fatalf("unexpected turn count: got %d want 40", len(turns))
	}

	// user/assistant pairs must never interleave across requests
	for i := 0; i < len(turns); i += 2 {
		if turns[i].Role != history.RoleUser || turns[i+1].Role != history.RoleAssistant {
			t.Fatalf("interleaved pair at %d: %s then %s", i, turns[i].Role, turns[i+1].Role)
		}
		if turns[i].Text[2:] != turns[i+1].Text[2:] {
			t.Fatalf("mismatched pair at %d: %q then %q", i, turns[i].Text, turns[i+1].Text)
		}
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := history.NewWithLimit(20)

	svc.Append("s1", history.Turn{Role: history.RoleUser, Text: "one"})
	svc.Append("s2", history.Turn{Role: history.RoleUser, Text: "two"})

	if turns := svc.Turns("s1"); len(turns) != 1 || turns[0].Text != "one" {
		t.Fatalf("s1 polluted: %+v", turns)
	}
	if turns := svc.Turns("s2"); len(turns) != 1 || turns[0].Text != "two" {
		t.Fatalf("s2 polluted: %+v", turns)
	}
}

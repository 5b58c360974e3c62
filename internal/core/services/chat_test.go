package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/futureme-labs/futureme-core/internal/adapters/driven/memstore"
	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven/mocks"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driving"
	"github.com/futureme-labs/futureme-core/internal/runtime"
)

type chatFixture struct {
	svc       driving.ChatService
	sessions  driven.SessionStore
	embedder  *mocks.MockEmbeddingService
	index     *mocks.MockVectorIndex
	generator *mocks.MockGenerationService
	readiness *runtime.Readiness
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	embedder := mocks.NewMockEmbeddingService()
	index := mocks.NewMockVectorIndex()
	generator := mocks.NewMockGenerationService("")
	sessions := memstore.NewSessionStore()
	readiness := runtime.NewReadiness()
	readiness.BeginRun()
	readiness.CompleteRun(&domain.IngestionSummary{})

	svc := NewChatService(ChatServiceConfig{
		Retriever:  NewRetriever(embedder, index),
		Composer:   NewPromptComposer("Aziz", 1, 8000),
		Generator:  generator,
		Sessions:   sessions,
		TurnLock:   memstore.NewTurnLock(),
		Readiness:  readiness,
		RetrievalK: 4,
	})

	return &chatFixture{
		svc:       svc,
		sessions:  sessions,
		embedder:  embedder,
		index:     index,
		generator: generator,
		readiness: readiness,
	}
}

func TestChatService_NewSession(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "hello future me"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a new session id")
	}
	if resp.Reply == "" {
		t.Fatal("expected a reply")
	}

	history, err := f.sessions.History(ctx, resp.SessionID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected [user, assistant] history, got %d turns", len(history))
	}
	if history[0].Role != domain.RoleUser || history[0].Text != "hello future me" {
		t.Errorf("unexpected first turn: %+v", history[0])
	}
	if history[1].Role != domain.RoleAssistant || history[1].Text != resp.Reply {
		t.Errorf("unexpected second turn: %+v", history[1])
	}
}

func TestChatService_EchoesSessionID(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "one"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "two", SessionID: first.SessionID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("expected echoed session id %s, got %s", first.SessionID, second.SessionID)
	}

	history, _ := f.sessions.History(ctx, first.SessionID, 0)
	if len(history) != 4 {
		t.Errorf("expected 4 turns after two successful turns, got %d", len(history))
	}
}

func TestChatService_UnknownSessionIDAdopted(t *testing.T) {
	f := newChatFixture(t)

	resp, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hi", SessionID: "never-seen-before"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SessionID != "never-seen-before" {
		t.Errorf("expected the unknown id to be adopted, got %s", resp.SessionID)
	}
}

func TestChatService_EmptyMessageRejected(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChatService_FailedGenerationLeavesSessionUntouched(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := f.sessions.History(ctx, resp.SessionID, 0)

	f.generator.SetFailNext(true)
	_, err = f.svc.Chat(ctx, domain.ChatRequest{Message: "second", SessionID: resp.SessionID})
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}

	after, _ := f.sessions.History(ctx, resp.SessionID, 0)
	if len(after) != len(before) {
		t.Errorf("failed turn mutated history: %d -> %d turns", len(before), len(after))
	}
}

func TestChatService_FailedEmbeddingLeavesSessionUntouched(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	resp, _ := f.svc.Chat(ctx, domain.ChatRequest{Message: "first"})

	f.embedder.SetFailNext(true)
	_, err := f.svc.Chat(ctx, domain.ChatRequest{Message: "second", SessionID: resp.SessionID})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}

	history, _ := f.sessions.History(ctx, resp.SessionID, 0)
	if len(history) != 2 {
		t.Errorf("expected history unchanged at 2 turns, got %d", len(history))
	}
}

func TestChatService_SkipsRetrievalBeforeIndexReady(t *testing.T) {
	f := newChatFixture(t)
	// Fresh readiness that never started
	notReady := runtime.NewReadiness()
	svc := NewChatService(ChatServiceConfig{
		Retriever:  NewRetriever(f.embedder, f.index),
		Composer:   NewPromptComposer("Aziz", 1, 8000),
		Generator:  f.generator,
		Sessions:   memstore.NewSessionStore(),
		TurnLock:   memstore.NewTurnLock(),
		Readiness:  notReady,
		RetrievalK: 4,
	})

	embedCallsBefore := f.embedder.Calls()
	_, err := svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("turn should succeed without the index, got %v", err)
	}
	if f.embedder.Calls() != embedCallsBefore {
		t.Error("retrieval should be skipped while the index is not ready")
	}
	if prompt := f.generator.LastPrompt(); prompt == nil || len(prompt.Evidence) != 0 {
		t.Error("expected an evidence-free prompt before the index is ready")
	}
}

func TestChatService_ConcurrentSessionsIndependent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	const turnsPerSession = 50
	sessionA := "session-a"
	sessionB := "session-b"

	var wg sync.WaitGroup
	for _, sessionID := range []string{sessionA, sessionB} {
		for i := 0; i < turnsPerSession; i++ {
			wg.Add(1)
			go func(id string, n int) {
				defer wg.Done()
				_, err := f.svc.Chat(ctx, domain.ChatRequest{
					Message:   fmt.Sprintf("message %d", n),
					SessionID: id,
				})
				if err != nil {
					t.Errorf("session %s turn %d: %v", id, n, err)
				}
			}(sessionID, i)
		}
	}
	wg.Wait()

	for _, sessionID := range []string{sessionA, sessionB} {
		history, err := f.sessions.History(ctx, sessionID, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(history) != 2*turnsPerSession {
			t.Fatalf("session %s: expected %d turns, got %d", sessionID, 2*turnsPerSession, len(history))
		}
		// Strict alternation: every pair is user then assistant, no
		// half-recorded turns and no cross-session interleaving.
		for i := 0; i < len(history); i += 2 {
			if history[i].Role != domain.RoleUser {
				t.Fatalf("session %s: turn %d should be user, got %s", sessionID, i, history[i].Role)
			}
			if history[i+1].Role != domain.RoleAssistant {
				t.Fatalf("session %s: turn %d should be assistant, got %s", sessionID, i+1, history[i+1].Role)
			}
		}
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driving"
	"github.com/futureme-labs/futureme-core/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// TurnState is a phase of the per-turn state machine
type TurnState string

const (
	TurnReceived   TurnState = "received"
	TurnRetrieving TurnState = "retrieving"
	TurnComposing  TurnState = "composing"
	TurnGenerating TurnState = "generating"
	TurnRecording  TurnState = "recording"
	TurnDone       TurnState = "done"
	TurnFailed     TurnState = "failed"
)

// chatService coordinates one chat turn end to end:
// received -> retrieving -> composing -> generating -> recording -> done,
// with failed reachable from any non-done state. A failed turn surfaces an
// error and leaves the session exactly as it was.
type chatService struct {
	retriever  *Retriever
	composer   *PromptComposer
	generator  driven.GenerationService
	sessions   driven.SessionStore
	turnLock   driven.TurnLock
	readiness  *runtime.Readiness
	retrievalK int
	historyCap int
	logger     *slog.Logger
}

// ChatServiceConfig holds dependencies for the chat service.
type ChatServiceConfig struct {
	Retriever  *Retriever
	Composer   *PromptComposer
	Generator  driven.GenerationService
	Sessions   driven.SessionStore
	TurnLock   driven.TurnLock
	Readiness  *runtime.Readiness
	RetrievalK int
	HistoryCap int // prior turns offered to the composer
	Logger     *slog.Logger
}

// NewChatService creates the chat orchestrator.
func NewChatService(cfg ChatServiceConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	historyCap := cfg.HistoryCap
	if historyCap <= 0 {
		historyCap = 20
	}
	return &chatService{
		retriever:  cfg.Retriever,
		composer:   cfg.Composer,
		generator:  cfg.Generator,
		sessions:   cfg.Sessions,
		turnLock:   cfg.TurnLock,
		readiness:  cfg.Readiness,
		retrievalK: cfg.RetrievalK,
		historyCap: historyCap,
		logger:     logger,
	}
}

// turn carries per-turn state machine bookkeeping
type turn struct {
	sessionID string
	state     TurnState
	logger    *slog.Logger
}

func (t *turn) to(next TurnState) {
	t.logger.Debug("turn transition", "session_id", t.sessionID, "from", t.state, "to", next)
	t.state = next
}

func (t *turn) fail(err error) error {
	t.logger.Warn("turn failed", "session_id", t.sessionID, "state", t.state, "error", err)
	t.state = TurnFailed
	return err
}

// Chat runs a full turn. Turns on the same session are serialized by the
// session turn lock; turns on different sessions proceed independently. The
// lock is per-session only, so holding it across the external calls below
// never blocks other sessions.
func (s *chatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, created, err := s.sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get or create session: %w", err)
	}
	if created {
		s.logger.Info("session created", "session_id", session.ID)
	}

	release, err := s.turnLock.Lock(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("acquire turn lock: %w", err)
	}
	defer release()

	t := &turn{sessionID: session.ID, state: TurnReceived, logger: s.logger}

	// received -> retrieving (unconditional). Retrieval consults the index
	// only once the readiness flag allows it; before that the turn runs
	// with empty evidence. An empty result set still counts as success.
	t.to(TurnRetrieving)
	var docs []domain.Document
	if s.readiness.State().Queryable() {
		docs, err = s.retriever.Retrieve(ctx, req.Message, s.retrievalK)
		if err != nil {
			return nil, t.fail(err)
		}
	}

	// retrieving -> composing
	t.to(TurnComposing)
	history, err := s.sessions.History(ctx, session.ID, s.historyCap)
	if err != nil {
		return nil, t.fail(fmt.Errorf("load history: %w", err))
	}
	prompt, err := s.composer.Compose(req.Message, docs, history)
	if err != nil {
		return nil, t.fail(err)
	}

	// composing -> generating
	t.to(TurnGenerating)
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, t.fail(err)
	}

	// generating -> recording: append the user and assistant turns as one
	// atomic operation so a failure never leaves a half-recorded pair.
	t.to(TurnRecording)
	userTurn := domain.NewTurn(domain.RoleUser, req.Message)
	assistantTurn := domain.NewTurn(domain.RoleAssistant, reply)
	if err := s.sessions.AppendTurns(ctx, session.ID, userTurn, assistantTurn); err != nil {
		return nil, t.fail(fmt.Errorf("record turn: %w", err))
	}

	t.to(TurnDone)
	return &domain.ChatResponse{Reply: reply, SessionID: session.ID}, nil
}

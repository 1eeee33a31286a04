package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/ai"
	"github.com/Farid841/rara/internal/model"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
	"github.com/Farid841/rara/internal/searchindex"
)

const retrievalTopK = 3

const contextPreamble = "Use the following medical information to answer the user's question about this rare disease:"

// Fallback answers appended when a pipeline stage fails before generation.
// Hard failures and "nothing relevant found" deliberately read differently:
// one tells the user to retry, the other to rephrase or see a professional.
const (
	fallbackTechnical = "Sorry, I could not process your question. There seems to be a technical problem. Please try again later."
	fallbackNoMatches = "Sorry, I could not find relevant information about this rare disease in the provided documents. Could you rephrase your question or consult a healthcare professional?"
)

// ChatService runs the query pipeline and owns the in-memory conversation
// sessions. Sessions live only as long as the process; the cleanup job
// prunes the idle ones.
type ChatService struct {
	embedder  ai.Embedder
	store     searchindex.Store
	completer ai.Completer

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	messages   []model.ChatMessage
	lastActive time.Time
}

func NewChatService(embedder ai.Embedder, store searchindex.Store, completer ai.Completer) *ChatService {
	return &ChatService{
		embedder:  embedder,
		store:     store,
		completer: completer,
		sessions:  make(map[string]*session),
	}
}

// Ask answers one question against the given assistant configuration. It
// appends exactly one user and one assistant message to the session, in
// that order, whatever happens inside the pipeline; early terminations
// surface as fallback answers, never as errors.
func (s *ChatService) Ask(ctx context.Context, sessionID string, cfg *model.AssistantConfig, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", appErr.ErrInvalid)
	}
	answer := s.answer(ctx, cfg, question)
	s.appendExchange(sessionID, question, answer)
	return answer, nil
}

// answer walks the linear chain embed → search → complete, short-circuiting
// to a fallback at the first failed stage.
func (s *ChatService) answer(ctx context.Context, cfg *model.AssistantConfig, question string) string {
	logger := logutil.GetLogger(ctx).With(zap.String("config_id", cfg.ID))

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Error("question embedding failed", zap.Error(err))
		return fallbackTechnical
	}

	snippets, err := s.store.Search(ctx, vector, retrievalTopK)
	if err != nil {
		logger.Error("retrieval failed", zap.Error(err))
		return fallbackTechnical
	}
	if len(snippets) == 0 {
		logger.Info("no relevant chunks found")
		return fallbackNoMatches
	}

	contextBlock := strings.Join(snippets, "\n\n")
	messages := []model.ChatMessage{
		{Role: model.RoleSystem, Content: cfg.Instructions + "\n\n" + contextPreamble + "\n" + contextBlock},
		{Role: model.RoleUser, Content: question},
	}
	answer, err := s.completer.Complete(ctx, messages)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		return fallbackTechnical
	}
	return answer
}

func (s *ChatService) appendExchange(sessionID, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.messages = append(sess.messages,
		model.ChatMessage{Role: model.RoleUser, Content: question},
		model.ChatMessage{Role: model.RoleAssistant, Content: answer},
	)
	sess.lastActive = time.Now()
}

// History returns a copy of the session's messages, oldest first. An
// unknown session yields an empty history.
func (s *ChatService) History(sessionID string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]model.ChatMessage, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// PruneIdle drops sessions inactive for longer than maxAge and reports how
// many were removed.
func (s *ChatService) PruneIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// ABOUTME: Chat service: conversation persistence plus model round-trips with a fixed timeout
// ABOUTME: Also hosts the note-grounded model features: tag suggestions and related notes

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/prompt"
	"github.com/leafnote/leafnote/internal/store"
)

const (
	// historyLimit is how many stored messages are replayed as context
	historyLimit = 10
	// contextNotesLimit is how many recent notes ground the system prompt
	contextNotesLimit = 10
	// relatedLimit is how many related notes the model is asked for
	relatedLimit = 3
	// suggestedTagsLimit caps parsed tag suggestions
	suggestedTagsLimit = 5
)

// Store defines what the chat service needs from persistence
type Store interface {
	GetOrCreateConversation(ctx context.Context, sessionID string) (*store.Conversation, error)
	RecentChatMessages(ctx context.Context, conversationID int64, limit int) ([]*store.ChatMessage, error)
	SaveChatMessage(ctx context.Context, msg *store.ChatMessage) error
	TouchConversation(ctx context.Context, conversationID int64) error
	RecentNotesWithTags(ctx context.Context, excludeID int64, limit int) ([]*store.Note, error)
}

// ModelClient defines what the chat service needs from the model layer
type ModelClient interface {
	Chat(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// Service handles chat conversations backed by the language model
type Service struct {
	store        Store
	model        ModelClient
	defaultModel string
	timeout      time.Duration
	logger       *slog.Logger
}

// NewService creates a chat service. timeout bounds each model round-trip.
func NewService(st Store, model ModelClient, defaultModel string, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        st,
		model:        model,
		defaultModel: defaultModel,
		timeout:      timeout,
		logger:       logger.With("component", "chat"),
	}
}

// Send processes one chat message: loads (or creates) the conversation for
// the chat session, replays the last stored messages as context behind a
// system prompt grounded in the current time and recent notes, and calls the
// model under the service timeout. On success both sides of the exchange are
// persisted and the conversation timestamp is bumped.
//
// A timeout surfaces as llm.ErrTimeout, distinct from llm.ErrUnavailable.
func (s *Service) Send(ctx context.Context, sessionID, message, model string) (string, error) {
	if model == "" {
		model = s.defaultModel
	}

	conv, err := s.store.GetOrCreateConversation(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("resolving conversation: %w", err)
	}

	history, err := s.store.RecentChatMessages(ctx, conv.ID, historyLimit)
	if err != nil {
		return "", fmt.Errorf("loading history: %w", err)
	}

	contextNotes, err := s.store.RecentNotesWithTags(ctx, 0, contextNotesLimit)
	if err != nil {
		return "", fmt.Errorf("loading context notes: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    store.RoleSystem,
		Content: prompt.ChatSystem(time.Now(), contextNotes),
	})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: store.RoleUser, Content: message})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.model.Chat(callCtx, model, messages)
	if err != nil {
		return "", err
	}

	now := time.Now()
	if err := s.store.SaveChatMessage(ctx, &store.ChatMessage{
		ConversationID: conv.ID,
		Role:           store.RoleUser,
		Content:        message,
		CreatedAt:      now,
	}); err != nil {
		return "", fmt.Errorf("saving user message: %w", err)
	}
	if err := s.store.SaveChatMessage(ctx, &store.ChatMessage{
		ConversationID: conv.ID,
		Role:           store.RoleAssistant,
		Content:        reply,
		CreatedAt:      now,
	}); err != nil {
		return "", fmt.Errorf("saving assistant message: %w", err)
	}
	if err := s.store.TouchConversation(ctx, conv.ID); err != nil {
		return "", fmt.Errorf("touching conversation: %w", err)
	}

	s.logger.Debug("chat exchange persisted", "conversation_id", conv.ID, "model", model)
	return reply, nil
}

// History returns the most recent messages of a chat session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]*store.ChatMessage, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	conv, err := s.store.GetOrCreateConversation(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}
	return s.store.RecentChatMessages(ctx, conv.ID, limit)
}

// SuggestTags asks the model for up to five tags for a note draft.
// The reply is parsed permissively.
func (s *Service) SuggestTags(ctx context.Context, title, content string) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.model.Chat(callCtx, s.defaultModel, []llm.Message{
		{Role: store.RoleUser, Content: prompt.SuggestTags(title, content)},
	})
	if err != nil {
		return nil, err
	}

	return prompt.ParseTags(reply, suggestedTagsLimit), nil
}

// RelatedNotes asks the model which of the 20 most recent other notes are
// most related to the given one. Unknown IDs in the reply are skipped; the
// result preserves candidate (recency) order.
func (s *Service) RelatedNotes(ctx context.Context, noteID int64, title, content string) ([]*store.Note, error) {
	candidates, err := s.store.RecentNotesWithTags(ctx, noteID, 20)
	if err != nil {
		return nil, fmt.Errorf("loading candidate notes: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.model.Chat(callCtx, s.defaultModel, []llm.Message{
		{Role: store.RoleUser, Content: prompt.RelatedNotes(title, content, candidates, relatedLimit)},
	})
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]bool)
	for _, id := range prompt.ParseIDs(reply, relatedLimit) {
		wanted[id] = true
	}

	var related []*store.Note
	for _, note := range candidates {
		if wanted[note.ID] {
			related = append(related, note)
		}
	}
	return related, nil
}

// ABOUTME: Note search in two modes: substring ranking and model-delegated relevance
// ABOUTME: Delegated mode falls back silently to text mode on any upstream failure

package search

import (
	"context"
	"log/slog"

	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/notes"
	"github.com/leafnote/leafnote/internal/prompt"
	"github.com/leafnote/leafnote/internal/store"
)

// Mode selects the search strategy
type Mode string

const (
	// ModeText ranks by case-insensitive substring match
	ModeText Mode = "text"
	// ModeSemantic delegates relevance ranking to the language model
	ModeSemantic Mode = "semantic"
)

// candidateLimit is how many recent notes are offered to the model
const candidateLimit = 20

// Store defines what the search service needs from persistence
type Store interface {
	SearchNotes(ctx context.Context, query string, limit, offset int) ([]*store.Note, error)
	CountSearchNotes(ctx context.Context, query string) (int, error)
	RecentNotesWithTags(ctx context.Context, excludeID int64, limit int) ([]*store.Note, error)
}

// ModelClient defines what the search service needs from the model layer
type ModelClient interface {
	Chat(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// Result is one page of search results with its pagination envelope
type Result struct {
	Notes      []*store.Note
	Pagination notes.Pagination
}

// Service performs note search
type Service struct {
	store  Store
	model  ModelClient
	name   string // model name used for delegated ranking
	logger *slog.Logger
}

// NewService creates a search service. modelName is the model used for
// delegated ranking.
func NewService(st Store, model ModelClient, modelName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		model:  model,
		name:   modelName,
		logger: logger.With("component", "search"),
	}
}

// Search runs a query in the given mode. Semantic mode never surfaces an
// upstream failure: any model error degrades to text mode for the same
// query and pagination.
func (s *Service) Search(ctx context.Context, query string, mode Mode, page, limit int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	if mode == ModeSemantic {
		result, err := s.semantic(ctx, query, page, limit)
		if err == nil {
			return result, nil
		}
		s.logger.Warn("semantic search failed, falling back to text", "error", err)
	}

	return s.text(ctx, query, page, limit)
}

// text performs the substring search with relevance ranking.
func (s *Service) text(ctx context.Context, query string, page, limit int) (*Result, error) {
	offset := (page - 1) * limit

	total, err := s.store.CountSearchNotes(ctx, query)
	if err != nil {
		return nil, err
	}

	found, err := s.store.SearchNotes(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return &Result{
		Notes:      found,
		Pagination: notes.NewPagination(page, limit, total),
	}, nil
}

// semantic asks the model to rank the most recent notes for the query.
// The reply is parsed permissively; a reply with no usable IDs is an
// explicit empty result, not an error.
func (s *Service) semantic(ctx context.Context, query string, page, limit int) (*Result, error) {
	candidates, err := s.store.RecentNotesWithTags(ctx, 0, candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Result{Pagination: notes.NewPagination(page, limit, 0)}, nil
	}

	reply, err := s.model.Chat(ctx, s.name, []llm.Message{
		{Role: store.RoleUser, Content: prompt.SemanticSearch(query, candidates, limit)},
	})
	if err != nil {
		return nil, err
	}

	ids := prompt.ParseIDs(reply, limit)

	// Filter candidates to the returned IDs, preserving the model's order
	byID := make(map[int64]*store.Note, len(candidates))
	for _, note := range candidates {
		byID[note.ID] = note
	}

	var ranked []*store.Note
	for _, id := range ids {
		if note, ok := byID[id]; ok {
			ranked = append(ranked, note)
		}
	}

	return &Result{
		Notes:      ranked,
		Pagination: notes.NewPagination(page, limit, len(ranked)),
	}, nil
}

// ABOUTME: Note CRUD service with slug derivation, pagination, and markdown rendering
// ABOUTME: Thin layer over the store; slug conflicts and not-found surface as distinct errors

package notes

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"

	"github.com/leafnote/leafnote/internal/store"
)

// Store defines what the notes service needs from persistence
type Store interface {
	CreateNote(ctx context.Context, note *store.Note) error
	GetNote(ctx context.Context, id int64) (*store.Note, error)
	ListNotes(ctx context.Context, limit, offset int) ([]*store.Note, error)
	CountNotes(ctx context.Context) (int, error)
	UpdateNote(ctx context.Context, id int64, title, content string) error
	DeleteNote(ctx context.Context, id int64) error
}

// Pagination describes one page of a note listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Service provides note operations over the store
type Service struct {
	store    Store
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// NewService creates a new notes service
func NewService(st Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		markdown: goldmark.New(),
		logger:   logger.With("component", "notes"),
	}
}

// Create derives the slug from the title and persists the note with its tags
// in one transaction. Returns store.ErrSlugExists on a title collision.
func (s *Service) Create(ctx context.Context, title, content string, tags []string) (*store.Note, error) {
	now := time.Now()
	note := &store.Note{
		Title:     title,
		Slug:      Slugify(title),
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created", "id", note.ID, "slug", note.Slug)
	return note, nil
}

// Get retrieves a note by ID.
func (s *Service) Get(ctx context.Context, id int64) (*store.Note, error) {
	return s.store.GetNote(ctx, id)
}

// List returns one page of notes, most recently updated first, along with
// the pagination envelope. Page is 1-based.
func (s *Service) List(ctx context.Context, page, limit int) ([]*store.Note, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	total, err := s.store.CountNotes(ctx)
	if err != nil {
		return nil, Pagination{}, err
	}

	notes, err := s.store.ListNotes(ctx, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	return notes, NewPagination(page, limit, total), nil
}

// NewPagination computes the page-count envelope for a listing.
func NewPagination(page, limit, total int) Pagination {
	pages := (total + limit - 1) / limit
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// Update replaces a note's title and content and returns the refreshed note.
// Returns store.ErrNotFound if the note doesn't exist.
func (s *Service) Update(ctx context.Context, id int64, title, content string) (*store.Note, error) {
	if err := s.store.UpdateNote(ctx, id, title, content); err != nil {
		return nil, err
	}
	return s.store.GetNote(ctx, id)
}

// Delete removes a note and its tag links.
// Returns store.ErrNotFound if the note doesn't exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.logger.Info("note deleted", "id", id)
	return nil
}

// RenderHTML renders a note's markdown content to HTML.
func (s *Service) RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// ABOUTME: Note and tag persistence methods for the SQLite store
// ABOUTME: Note+tag+link writes run in one transaction so partial state cannot be left behind

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateNote inserts a note, upserts its tags by name, and links them,
// all within a single transaction. Returns ErrSlugExists if the slug is
// already taken. The note's ID is populated on success.
func (s *SQLiteStore) CreateNote(ctx context.Context, note *Note) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(note.CreatedAt)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO notes (title, slug, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.Title, note.Slug, note.Content, now, formatTime(note.UpdatedAt))
	if err != nil {
		if isConstraintViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("inserting note: %w", err)
	}

	noteID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting note id: %w", err)
	}

	for _, tagName := range note.Tags {
		tagID, err := upsertTag(ctx, tx, tagName)
		if err != nil {
			return err
		}
		// Idempotent link insert
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)
		`, noteID, tagID); err != nil {
			return fmt.Errorf("linking tag %q: %w", tagName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing note: %w", err)
	}

	note.ID = noteID
	s.logger.Debug("created note", "id", noteID, "slug", note.Slug, "tags", len(note.Tags))
	return nil
}

// upsertTag returns the ID of the named tag, creating it if absent.
func upsertTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var tagID int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		result, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
		if err != nil {
			return 0, fmt.Errorf("inserting tag %q: %w", name, err)
		}
		return result.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("querying tag %q: %w", name, err)
	}
	return tagID, nil
}

// GetNote retrieves a note by ID, including its tags.
// Returns ErrNotFound if the note doesn't exist.
func (s *SQLiteStore) GetNote(ctx context.Context, id int64) (*Note, error) {
	query := `
		SELECT n.id, n.title, n.slug, n.content, n.created_at, n.updated_at,
		       GROUP_CONCAT(t.name) as tags
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
		WHERE n.id = ?
		GROUP BY n.id
	`

	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying note: %w", err)
	}
	return note, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote scans a row of the canonical note+tags column set
func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var content sql.NullString
	var tags sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Slug,
		&content,
		&createdAtStr,
		&updatedAtStr,
		&tags,
	)
	if err != nil {
		return nil, err
	}

	note.Content = content.String
	if tags.Valid && tags.String != "" {
		note.Tags = strings.Split(tags.String, ",")
	}

	note.CreatedAt, err = parseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	note.UpdatedAt, err = parseTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &note, nil
}

// ListNotes retrieves notes ordered by most recent update, with offset pagination.
func (s *SQLiteStore) ListNotes(ctx context.Context, limit, offset int) ([]*Note, error) {
	query := `
		SELECT n.id, n.title, n.slug, n.content, n.created_at, n.updated_at,
		       GROUP_CONCAT(t.name) as tags
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
		GROUP BY n.id
		ORDER BY n.updated_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// collectNotes scans all rows of the canonical note+tags column set
func collectNotes(rows *sql.Rows) ([]*Note, error) {
	var notes []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating note rows: %w", err)
	}
	return notes, nil
}

// CountNotes returns the total number of notes.
func (s *SQLiteStore) CountNotes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}
	return count, nil
}

// UpdateNote replaces a note's title and content and refreshes its updated
// timestamp. Returns ErrNotFound if the note doesn't exist.
func (s *SQLiteStore) UpdateNote(ctx context.Context, id int64, title, content string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, updated_at = ?
		WHERE id = ?
	`, title, content, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated note", "id", id)
	return nil
}

// DeleteNote removes a note. Its note_tags rows cascade; shared tags remain.
// Returns ErrNotFound if the note doesn't exist.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted note", "id", id)
	return nil
}

// SearchNotes performs a case-insensitive substring search over titles and
// content. Title matches rank above content-only matches; ties break on
// recency.
func (s *SQLiteStore) SearchNotes(ctx context.Context, query string, limit, offset int) ([]*Note, error) {
	searchTerm := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.slug, n.content, n.created_at, n.updated_at,
		       GROUP_CONCAT(t.name) as tags
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
		WHERE n.title LIKE ? OR n.content LIKE ?
		GROUP BY n.id
		ORDER BY
			CASE
				WHEN n.title LIKE ? THEN 3
				WHEN n.content LIKE ? THEN 1
				ELSE 0
			END DESC,
			n.updated_at DESC
		LIMIT ? OFFSET ?
	`, searchTerm, searchTerm, searchTerm, searchTerm, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying search: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// CountSearchNotes returns the number of notes matching a substring search.
func (s *SQLiteStore) CountSearchNotes(ctx context.Context, query string) (int, error) {
	searchTerm := "%" + query + "%"

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notes WHERE title LIKE ? OR content LIKE ?
	`, searchTerm, searchTerm).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting search results: %w", err)
	}
	return count, nil
}

// RecentNotesWithTags returns the most recently updated notes with their tags,
// excluding the given note ID (0 excludes nothing). Used to build model
// prompts for semantic search, chat grounding, and related-note lookup.
func (s *SQLiteStore) RecentNotesWithTags(ctx context.Context, excludeID int64, limit int) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.slug, n.content, n.created_at, n.updated_at,
		       GROUP_CONCAT(t.name) as tags
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
		WHERE n.id != ?
		GROUP BY n.id
		ORDER BY n.updated_at DESC
		LIMIT ?
	`, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// ABOUTME: Store interface and data types for leafnote persistence
// ABOUTME: Defines User, Session, Note, Conversation structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrSlugExists is returned when creating a note whose slug is already taken
var ErrSlugExists = errors.New("a note with this slug already exists")

// ErrUsernameExists is returned when creating a user with a taken username
var ErrUsernameExists = errors.New("username already exists")

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
// Unknown and expired tokens are deliberately indistinguishable to callers.
var ErrSessionNotFound = errors.New("session not found")

// User represents an account that can log in
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// Session represents an authenticated browser session
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Note represents a single wiki note
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation represents a chat conversation keyed by an opaque session ID
// (distinct from the auth session).
type Conversation struct {
	ID        int64
	SessionID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage represents a single stored chat message
type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	Role           string    `json:"role"` // "user", "assistant", "system"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store defines the interface for leafnote persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Notes
	CreateNote(ctx context.Context, note *Note) error
	GetNote(ctx context.Context, id int64) (*Note, error)
	ListNotes(ctx context.Context, limit, offset int) ([]*Note, error)
	CountNotes(ctx context.Context) (int, error)
	UpdateNote(ctx context.Context, id int64, title, content string) error
	DeleteNote(ctx context.Context, id int64) error
	SearchNotes(ctx context.Context, query string, limit, offset int) ([]*Note, error)
	CountSearchNotes(ctx context.Context, query string) (int, error)
	RecentNotesWithTags(ctx context.Context, excludeID int64, limit int) ([]*Note, error)

	// Chat
	GetOrCreateConversation(ctx context.Context, sessionID string) (*Conversation, error)
	RecentChatMessages(ctx context.Context, conversationID int64, limit int) ([]*ChatMessage, error)
	SaveChatMessage(ctx context.Context, msg *ChatMessage) error
	TouchConversation(ctx context.Context, conversationID int64) error

	// Close releases any resources held by the store
	Close() error
}
